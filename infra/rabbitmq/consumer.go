package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"schwarzesbrett/pkg/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultPrefetch = 10
	handleTimeout   = 30 * time.Second
)

type EventHandler func(ctx context.Context, event *events.Event) error

// Binding routes the given keys of one exchange into the consumer's queue.
type Binding struct {
	Exchange    string
	RoutingKeys []string
}

type ConsumerConfig struct {
	QueueName     string // e.g. "cache.invalidation.v1"
	ServiceName   string // consumer tag
	Bindings      []Binding
	PrefetchCount int
}

// Consumer reads one durable queue. Messages that fail to decode or to
// process are nacked without requeue and land in <queue>.dlq.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	if len(config.Bindings) == 0 {
		return nil, errors.New("consumer needs at least one binding")
	}

	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupQueue(channel, config); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created",
		zap.String("queue", config.QueueName),
		zap.Int("bindings", len(config.Bindings)),
	)

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   config.QueueName,
		serviceName: config.ServiceName,
	}, nil
}

func setupQueue(ch *amqp.Channel, config ConsumerConfig) error {
	prefetch := config.PrefetchCount
	if prefetch == 0 {
		prefetch = defaultPrefetch
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	dlxName := config.QueueName + ".dlx"
	if err := declareTopic(ch, dlxName); err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	queue, err := ch.QueueDeclare(config.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlxName,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	dlqName := config.QueueName + ".dlq"
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	// Dead letters keep their original routing key.
	if err := ch.QueueBind(dlqName, "#", dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	for _, b := range config.Bindings {
		if err := declareTopic(ch, b.Exchange); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", b.Exchange, err)
		}
		for _, key := range b.RoutingKeys {
			if err := ch.QueueBind(queue.Name, key, b.Exchange, false, nil); err != nil {
				return fmt.Errorf("failed to bind %s to %s: %w", key, b.Exchange, err)
			}
		}
	}

	return nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		c.serviceName,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages", zap.String("queue", c.queueName))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			c.handleMessage(ctx, msg, handler)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, handler EventHandler) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	service, _ := msg.Headers["x-service"].(string)

	log := zap.L().With(
		zap.String("queue", c.queueName),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
		zap.String("sourceService", service),
	)

	var event events.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Error("Failed to unmarshal event", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := handler(processCtx, &event); err != nil {
		log.Error("Failed to process event", zap.String("event", event.Event), zap.Error(err))
		msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Error("Failed to acknowledge message", zap.Error(err))
		return
	}
	log.Debug("Processed event", zap.String("event", event.Event))
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}
	zap.L().Info("RabbitMQ consumer closed")
	return nil
}
