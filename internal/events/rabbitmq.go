package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const dialAttempts = 5

// RabbitMQPublisher publishes complaint events to a topic exchange, using the
// event type as routing key.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewRabbitMQPublisher(url, exchange string, log *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := dial(url, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func dial(url string, log *zap.Logger) (*amqp.Connection, error) {
	var err error
	wait := time.Second
	for i := 0; i < dialAttempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Warn("RabbitMQ dial failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		time.Sleep(wait)
		wait *= 2
	}
	return nil, err
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event ComplaintEvent) error {
	body, err := event.Serialize()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		string(event.Type),
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    event.OccurredAt,
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
