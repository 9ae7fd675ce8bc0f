package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Port             string        `mapstructure:"PORT"`
	PostgresUsername string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDatabase string        `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSLMode  string        `mapstructure:"POSTGRES_SSLMODE"`
	PostgresHost     string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string        `mapstructure:"POSTGRES_PORT"`
	RedisHost        string        `mapstructure:"REDIS_HOST"`
	RedisPort        string        `mapstructure:"REDIS_PORT"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	RabbitMQURL      string        `mapstructure:"RABBITMQ_URL"`
	ServiceName      string        `mapstructure:"SERVICE_NAME"`
	AWSEndpoint      string        `mapstructure:"AWS_ENDPOINT"`
	AWSBucket        string        `mapstructure:"AWS_BUCKET"`
	AWSDefaultRegion string        `mapstructure:"AWS_DEFAULT_REGION"`
	AWSAccessKey     string        `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey     string        `mapstructure:"AWS_SECRET_KEY"`
	GRPCPort         string        `mapstructure:"GRPC_PORT"`
	ItemsPerPage     int           `mapstructure:"ITEMS_PER_PAGE"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	ViewStateTTL     time.Duration `mapstructure:"VIEW_STATE_TTL"`
	ExpirySchedule   string        `mapstructure:"EXPIRY_SCHEDULE"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

// PostgresDSN returns the lib/pq connection string.
func (c *AppConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUsername, c.PostgresPassword, c.PostgresDatabase, c.PostgresSSLMode,
	)
}

// RedisEnabled reports whether a Redis host is configured.
func (c *AppConfig) RedisEnabled() bool {
	return c.RedisHost != ""
}

func Read() *AppConfig {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	var appConfig AppConfig
	err := viper.Unmarshal(&appConfig)
	if err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}

	return &appConfig
}

func bindEnvVariables() {
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("POSTGRES_USERNAME")
	_ = viper.BindEnv("POSTGRES_PASSWORD")
	_ = viper.BindEnv("POSTGRES_DATABASE")
	_ = viper.BindEnv("POSTGRES_SSLMODE")
	_ = viper.BindEnv("POSTGRES_HOST")
	_ = viper.BindEnv("POSTGRES_PORT")
	_ = viper.BindEnv("REDIS_HOST")
	_ = viper.BindEnv("REDIS_PORT")
	_ = viper.BindEnv("REDIS_PASSWORD")
	_ = viper.BindEnv("REDIS_DB")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SERVICE_NAME")
	_ = viper.BindEnv("AWS_ENDPOINT")
	_ = viper.BindEnv("AWS_BUCKET")
	_ = viper.BindEnv("AWS_DEFAULT_REGION")
	_ = viper.BindEnv("AWS_ACCESS_KEY")
	_ = viper.BindEnv("AWS_SECRET_KEY")
	_ = viper.BindEnv("GRPC_PORT")
	_ = viper.BindEnv("ITEMS_PER_PAGE")
	_ = viper.BindEnv("CACHE_TTL")
	_ = viper.BindEnv("VIEW_STATE_TTL")
	_ = viper.BindEnv("EXPIRY_SCHEDULE")
	_ = viper.BindEnv("LOG_LEVEL")
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SERVICE_NAME", "schwarzesbrett")
	viper.SetDefault("GRPC_PORT", "9090")
	viper.SetDefault("ITEMS_PER_PAGE", 20)
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("VIEW_STATE_TTL", "30m")
	viper.SetDefault("EXPIRY_SCHEDULE", "@every 15m")
	viper.SetDefault("LOG_LEVEL", "info")
}
