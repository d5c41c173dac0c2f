package messaging

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matst80/plat-finder/pkg/common/jsoncompat"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes the topic in a goroutine until the channel closes.
// Messages the filter rejects are dropped without requeue.
func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, filter func(amqp.Delivery) error) error {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		for d := range msgs {
			if err := filter(d); err != nil {
				log.Printf("Error processing message: %v", err)
				if nackErr := d.Nack(false, false); nackErr != nil {
					log.Printf("Failed to nack message: %v", nackErr)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Printf("Failed to ack message: %v", err)
			}
		}
	}(fc)
	return nil
}

// DecodeChange parses a catalogue change message body.
func DecodeChange(body []byte) (CatalogueChange, error) {
	var change CatalogueChange
	err := jsoncompat.Unmarshal(body, &change)
	return change, err
}

// ListenForChanges calls handle for every catalogue change on the topic.
func ListenForChanges(conn *amqp.Connection, prefix string, handle func(CatalogueChange) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err = DefineTopic(ch, prefix, CatalogueChanged); err != nil {
		ch.Close()
		return err
	}
	return ListenToTopic(ch, prefix, CatalogueChanged, func(d amqp.Delivery) error {
		change, err := DecodeChange(d.Body)
		if err != nil {
			return err
		}
		return handle(change)
	})
}
