package rabbitmq

import (
	"context"
	"encoding/json"
	"log"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/services"
)

// Consumer reads notification events from the queue and hands
// them to the notify service.
type Consumer struct {
	conn     *amqp091.Connection
	notifier services.NotifyService
}

func NewConsumer(conn *amqp091.Connection, notifier services.NotifyService) *Consumer {
	return &Consumer{conn: conn, notifier: notifier}
}

// Run consumes until the context is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	msgs, err := ch.Consume(
		NotificationQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	log.Println("Started consuming notifications from RabbitMQ")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	var req models.NotificationRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		log.Printf("Failed to unmarshal notification: %v", err)
		// malformed payloads are dropped, not requeued
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack notification: %v", err)
		}
		return
	}

	delivered := c.notifier.Dispatch(ctx, req)
	if !delivered {
		log.Printf("Notification %s for recipient %s was not delivered", req.Type, req.RecipientID)
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack notification: %v", err)
	}
}
