package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finmate/finmate/internal/event_bus"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards domain events to a durable topic exchange, routed by event type.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

type message struct {
	Type      event_bus.EventType `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Data      any                 `json:"data"`
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Infof("Publishing domain events to AMQP exchange %s", exchange)
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Attach subscribes the publisher to every event on the bus.
func (p *Publisher) Attach(bus *event_bus.EventBus) (unsubscribe func()) {
	return bus.SubscribeAll(p.forward)
}

func (p *Publisher) forward(e event_bus.Event) error {
	body, err := json.Marshal(message{Type: e.Type, Timestamp: e.Timestamp, Data: e.Data})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.Context()), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		string(e.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.Timestamp,
			Type:         string(e.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", e.Type, err)
	}
	log.Debugf("Forwarded event %s to exchange %s", e.Type, p.exchange)
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Warnf("failed to close AMQP channel: %v", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
