package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// Config represents the configuration for record event publishing
type Config struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"-"` // AMQP_URL
	Exchange       string `toml:"exchange"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// channel is the subset of *amqp091.Channel used for publishing
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher sends record events to a topic exchange keyed by event name
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	timeout  time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

var _ ledger.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(cfg Config, log *logger.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, cfg, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, cfg Config, log *logger.Logger) (*AMQPPublisher, error) {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &AMQPPublisher{
		channel:  ch,
		exchange: cfg.Exchange,
		timeout:  timeout,
		logger:   log.Named("amqp-events"),
		now:      time.Now,
	}, nil
}

// PublishRecordEvent publishes one persistent JSON message routed by event name
func (p *AMQPPublisher) PublishRecordEvent(ctx context.Context, event string, record *ledger.Record) error {
	body, err := NewRecordMessage(event, record, p.now()).ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal record event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msgID := uuid.NewString()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event,      // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msgID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish record event: %w", err)
	}

	p.logger.Debug("Published record event",
		logger.String("event", event),
		logger.Int64("record_id", record.ID),
		logger.String("message_id", msgID))
	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
