package rabbitmq

import (
	"fmt"
	"log"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Erdaulet0341/taxi-bots/config"
)

const (
	NotificationExchange = "notification_topic"
	NotificationQueue    = "notifications"
	NotificationBindKey  = "notification.#"
)

// Initialize RabbitMQ connection and setup exchanges
func InitRabbitMQ(cfg config.Config) (*amqp091.Connection, error) {
	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser, cfg.RabbitMQPassword, cfg.RabbitMQHost, cfg.RabbitMQPort)

	conn, err := amqp091.Dial(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	log.Println("Connected to RabbitMQ")

	if err := setupExchanges(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ exchanges: %w", err)
	}

	return conn, nil
}

func setupExchanges(conn *amqp091.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		NotificationExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", NotificationExchange, err)
	}

	q, err := ch.QueueDeclare(
		NotificationQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotificationQueue, err)
	}

	err = ch.QueueBind(
		q.Name,
		NotificationBindKey,
		NotificationExchange,
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	return nil
}
