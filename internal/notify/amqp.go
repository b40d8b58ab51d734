package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"
)

const defaultQueue = "shortlist_events"

// AMQPPublisher sends events to RabbitMQ. With an exchange set the routing
// key is "shortlist.<jobId>".
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	queue    string
}

func NewAMQPPublisher(url, exchange, queue string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	p := &AMQPPublisher{conn: conn, ch: ch, exchange: strings.TrimSpace(exchange), queue: strings.TrimSpace(queue)}
	if p.queue == "" {
		p.queue = defaultQueue
	}

	if p.exchange != "" {
		err = ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
	} else {
		_, err = ch.QueueDeclare(p.queue, true, false, false, false, nil)
	}
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("declare amqp topology: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) routingKey(event Event) string {
	if p.exchange == "" {
		return p.queue
	}
	return "shortlist." + event.JobID
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := event.Marshal()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		p.routingKey(event),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			Timestamp:    event.DecidedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s to amqp: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
