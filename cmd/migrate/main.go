package main

import (
	"fmt"
	"os"

	"schwarzesbrett/infra/postgres"
	"schwarzesbrett/internal/container"
	"schwarzesbrett/pkg/config"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	down := pflag.Bool("down", false, "roll back the most recent migration")
	status := pflag.Bool("status", false, "print the state of every migration")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [--status | --down]")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	appConfig := config.Read()
	logger := container.InitLogger(appConfig.LogLevel)
	defer logger.Sync()

	repository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer repository.Close()

	var err error
	switch {
	case *status:
		err = repository.MigrationStatus()
	case *down:
		err = repository.Rollback()
	default:
		err = repository.Migrate()
	}
	if err != nil {
		zap.L().Fatal("Migration failed", zap.Error(err))
	}
}
