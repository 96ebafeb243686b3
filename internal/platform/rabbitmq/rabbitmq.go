package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"faqdesk/internal/config"
)

// New dials the broker with the heartbeat and dial timeout from the
// rabbitmq config section, then declares the activity queue up front so a
// broker that cannot host it fails the boot instead of the first publish.
func New(ctx context.Context, cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	dialTimeout := 5 * time.Second
	if cfg.DialTimeoutSeconds > 0 {
		dialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	amqpCfg := amqp.Config{
		Dial: amqp.DefaultDial(dialTimeout),
	}
	if cfg.HeartbeatSeconds > 0 {
		amqpCfg.Heartbeat = time.Duration(cfg.HeartbeatSeconds) * time.Second
	}

	conn, err := amqp.DialConfig(cfg.URL, amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		cfg.ActivityPersistQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare activity queue failed: %w", err)
	}

	return conn, nil
}
