package queue

import (
	"encoding/json"
	"log"

	"github.com/streadway/amqp"
)

// DeliveryEvent is published after the dispatcher finalizes a message so
// the notification layer can surface the outcome without polling the API.
type DeliveryEvent struct {
	MessageID  string `json:"message_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
}

type Publisher interface {
	PublishDeliveryEvent(ev DeliveryEvent) error
	Close() error
}

// AMQPPublisher pushes delivery events onto a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

const DeliveryEventQueue = "message_events"

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DeliveryEventQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: DeliveryEventQueue}, nil
}

func (p *AMQPPublisher) PublishDeliveryEvent(ev DeliveryEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.ch.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		log.Println("⚠️ Failed to close AMQP channel:", err)
	}
	return p.conn.Close()
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishDeliveryEvent(DeliveryEvent) error { return nil }
func (NoopPublisher) Close() error                             { return nil }

var _ Publisher = (*AMQPPublisher)(nil)
var _ Publisher = NoopPublisher{}
