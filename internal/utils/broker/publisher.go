package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const RoutingMealAnalyzed = "meal.analyzed"

type (
	// Publisher sends domain events. Implementations must be safe for
	// concurrent use.
	Publisher interface {
		Publish(ctx context.Context, routingKey string, payload any) error
		Close() error
	}

	amqpPublisher struct {
		url      string
		exchange string
		dial     func(url string) (amqpConnection, error)
		log      logrus.FieldLogger

		mu      sync.Mutex
		conn    amqpConnection
		channel amqpChannel
	}

	amqpChannel interface {
		ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
		Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
		NotifyClose(c chan *amqp.Error) chan *amqp.Error
	}

	amqpConnection interface {
		Channel() (amqpChannel, error)
		NotifyClose(c chan *amqp.Error) chan *amqp.Error
		IsClosed() bool
		Close() error
	}

	streadwayConnection struct {
		*amqp.Connection
	}

	noopPublisher struct{}
)

// NewPublisher dials RabbitMQ and declares a topic exchange. An empty url
// returns a publisher that drops events.
func NewPublisher(url, exchange string, log logrus.FieldLogger) (Publisher, error) {
	if url == "" {
		return noopPublisher{}, nil
	}
	if exchange == "" {
		exchange = "beautyfood.events"
	}
	p := &amqpPublisher{url: url, exchange: exchange, dial: dialAMQP, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialAMQP(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return streadwayConnection{conn}, nil
}

func (c streadwayConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (p *amqpPublisher) connect() error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	p.conn, p.channel = conn, nil
	if err := p.openChannel(); err != nil {
		conn.Close()
		return err
	}

	go func(closed chan *amqp.Error) {
		if err := <-closed; err != nil {
			p.log.WithFields(logrus.Fields{"task": "broker"}).Warnf("rabbitmq connection closed: %v", err)
		}
	}(conn.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// openChannel opens a channel on the current connection. Callers hold mu or
// own p exclusively.
func (p *amqpPublisher) openChannel() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.channel = ch
	go p.watchChannel(ch, ch.NotifyClose(make(chan *amqp.Error, 1)))
	return nil
}

// watchChannel drops the channel once the server closes it so the next
// Publish opens a fresh one on the same connection.
func (p *amqpPublisher) watchChannel(ch amqpChannel, closed chan *amqp.Error) {
	if err := <-closed; err != nil {
		p.log.WithFields(logrus.Fields{"task": "broker"}).Warnf("rabbitmq channel closed: %v", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == ch {
		p.channel = nil
	}
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.conn == nil || p.conn.IsClosed():
		if err := p.connect(); err != nil {
			return err
		}
	case p.channel == nil:
		if err := p.openChannel(); err != nil {
			return err
		}
	}
	return p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

func (noopPublisher) Close() error { return nil }
