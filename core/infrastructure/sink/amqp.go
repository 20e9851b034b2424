package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

const defaultRoutingKeyPrefix = "switchkit.inventory."

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes reports to a RabbitMQ exchange.
type AMQPPublisher struct {
	conn       io.Closer
	ch         amqpChannel
	exchange   string
	routingKey string
	log        *zap.Logger
}

var _ ports.Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials url and opens a channel. An empty routingKey
// publishes under switchkit.inventory.<target>.
func NewAMQPPublisher(url, exchange, routingKey string, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return newAMQPPublisher(conn, ch, exchange, routingKey, log), nil
}

func newAMQPPublisher(conn io.Closer, ch amqpChannel, exchange, routingKey string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey, log: log}
}

func (p *AMQPPublisher) key(target string) string {
	if p.routingKey != "" {
		return p.routingKey
	}
	return defaultRoutingKeyPrefix + target
}

func (p *AMQPPublisher) Publish(ctx context.Context, report entities.InventoryReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report for %s: %w", report.Target, err)
	}
	key := p.key(report.Target)
	err = p.ch.Publish(p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    report.CollectedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish report for %s: %w", report.Target, err)
	}
	p.log.Debug("report published", zap.String("exchange", p.exchange), zap.String("routing_key", key))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.log.Debug("closing channel", zap.Error(err))
	}
	return p.conn.Close()
}
