package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/storefront-api/internal/model"
)

// Publisher puts paid orders on the orders queue for the stock worker.
type Publisher struct {
	channel *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{channel: ch}
}

func (p *Publisher) PublishOrder(ctx context.Context, msg model.OrderMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal order message: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, "", orderQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID.String(),
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish order: %w", err)
	}
	return nil
}
