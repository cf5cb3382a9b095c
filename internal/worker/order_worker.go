package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

const (
	orderQueueName = "orders"
	dlxExchange    = "orders.dlx"
	dlqQueueName   = "orders.dlq"
	idempotencyTTL = 24 * time.Hour
)

type orderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

type stockReserver interface {
	ReserveStock(ctx context.Context, variationID uuid.UUID, quantity int) error
}

// OrderWorker reserves variation stock for paid orders it reads off the
// orders queue.
type OrderWorker struct {
	channel     *amqp.Channel
	tx          repository.Transactor
	orders      orderReader
	stock       stockReserver
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewOrderWorker(
	ch *amqp.Channel,
	tx repository.Transactor,
	orders orderReader,
	stock stockReserver,
	redisClient *redis.Client,
	log *slog.Logger,
) *OrderWorker {
	return &OrderWorker{
		channel:     ch,
		tx:          tx,
		orders:      orders,
		stock:       stock,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares the orders queue with its dead-letter exchange and
// queue. Messages the worker rejects end up in orders.dlq.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", dlxExchange, err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", dlqQueueName, err)
	}
	if err := ch.QueueBind(dlqQueueName, orderQueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", dlqQueueName, err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderQueueName,
	}
	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare %s: %w", orderQueueName, err)
	}
	// One unacked message at a time keeps stock reservations in queue order.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	return nil
}

// Start consumes paid-order messages until Stop is called or ctx ends.
func (w *OrderWorker) Start(ctx context.Context) error {
	deliveries, err := w.channel.Consume(orderQueueName, "stock-reserver", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", orderQueueName, err)
	}
	go w.consume(ctx, deliveries)
	w.log.Info("stock reservation worker started", "queue", orderQueueName)
	return nil
}

func (w *OrderWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				w.log.Warn("order delivery channel closed")
				return
			}
			w.handleDelivery(ctx, msg)
		}
	}
}

func (w *OrderWorker) Stop() { close(w.done) }

func reservationKey(orderID uuid.UUID) string {
	return "order_processed:" + orderID.String()
}

// handleDelivery acks a message once the order's stock is reserved. Broken
// messages and orders that cannot be reserved are dead-lettered; a Redis
// outage requeues the message.
func (w *OrderWorker) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	var paid model.OrderMessage
	if err := json.Unmarshal(msg.Body, &paid); err != nil || paid.OrderID == uuid.Nil {
		w.log.Error("malformed order message", "message_id", msg.MessageId, "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", paid.OrderID, "user_id", paid.UserID)
	key := reservationKey(paid.OrderID)

	seen, err := w.redisClient.Exists(ctx, key).Result()
	if err != nil {
		log.Error("check reservation key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if seen > 0 {
		log.Info("stock already reserved, skipping")
		_ = msg.Ack(false)
		return
	}

	lines, err := w.reserveStock(ctx, paid.OrderID)
	if err != nil {
		log.Error("reserve stock failed", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	if err := w.redisClient.Set(ctx, key, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set reservation key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("stock reserved", "lines", lines)
}

// reserveStock takes stock for every variation line of a paid order and
// reports how many lines it reserved. Either all lines are reserved or none.
func (w *OrderWorker) reserveStock(ctx context.Context, orderID uuid.UUID) (int, error) {
	order, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return 0, fmt.Errorf("order not found: %s", orderID)
	}
	if order.PaymentStatus != model.PaymentStatusCompleted {
		return 0, fmt.Errorf("order %s payment is %s", orderID, order.PaymentStatus)
	}

	reserved := 0
	err = w.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, item := range order.Items {
			if item.VariationID == nil {
				continue
			}
			if err := w.stock.ReserveStock(ctx, *item.VariationID, item.Quantity); err != nil {
				return fmt.Errorf("line %s: %w", item.ID, err)
			}
			reserved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reserved, nil
}
