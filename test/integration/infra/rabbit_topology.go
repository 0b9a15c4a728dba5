//go:build integration

package infra

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// BindTempQueue declares exchange and an exclusive server-named queue bound
// with key. Deliveries stop when ch is closed.
func BindTempQueue(ch *amqp.Channel, exchange, key string) (<-chan amqp.Delivery, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		"",    // server generates name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
		return nil, err
	}

	return ch.Consume(q.Name, "", true, true, false, false, nil)
}
