package broker

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrDeliveriesClosed = errors.New("broker closed the delivery channel")

// Consumer reads the event queue with auto-ack; a message is gone once it
// has been handed out.
type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
}

func NewConsumer(uri, queue, tag string, prefetch int) (*Consumer, error) {
	conn, ch, err := openQueue(uri, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = closeAll(ch, conn)
		return nil, err
	}
	deliveries, err := ch.Consume(
		queue,
		tag,
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = closeAll(ch, conn)
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, deliveries: deliveries}, nil
}

// Run passes each delivery to fn until ctx is done (nil) or the broker
// closes the channel (ErrDeliveriesClosed).
func (c *Consumer) Run(ctx context.Context, fn func(amqp.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-c.deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			fn(d)
		}
	}
}

func (c *Consumer) Close() error { return closeAll(c.ch, c.conn) }
