package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/payment"
	"github.com/flicky/storefront-api/internal/repository"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
)

// OrderPublisher announces paid orders to downstream consumers.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, msg model.OrderMessage) error
}

type OrderService struct {
	tx        repository.Transactor
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	payments  payment.Processor
	publisher OrderPublisher
	log       *slog.Logger
}

// NewOrderService wires the checkout flow. publisher may be nil.
func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	payments payment.Processor,
	publisher OrderPublisher,
	log *slog.Logger,
) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		payments:  payments,
		publisher: publisher,
		log:       log,
	}
}

// CreateOrder turns the user's cart into an order, empties the cart and
// charges the order. A declined payment still returns the order, cancelled.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	var order *model.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.cartRepo.LockByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if cart == nil {
			return ErrCartNotFound
		}

		lines, err := s.cartRepo.ListItems(ctx, cart.ID)
		if err != nil {
			return fmt.Errorf("get cart items: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			lineTotal := line.LineTotal()
			total = total.Add(lineTotal)
			items = append(items, model.OrderItem{
				ProductID:        line.ProductID,
				VariationID:      line.VariationID,
				Quantity:         line.Quantity,
				CustomDesignText: line.CustomDesignText,
				CustomDesignURL:  line.CustomDesignURL,
				UnitPrice:        line.UnitPrice,
				TotalPrice:       lineTotal,
				Product:          line.Product,
				Variation:        line.Variation,
			})
		}

		order = &model.Order{
			UserID:          userID,
			OrderNumber:     newOrderNumber(userID, time.Now()),
			Status:          model.OrderStatusPending,
			TotalAmount:     total,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			Items:           items,
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.settlePayment(ctx, order); err != nil {
		// The order is committed; the reconciler settles it later.
		s.log.Error("settle payment", "order_id", order.ID, "error", err)
	}

	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

// settlePayment charges the order and records the outcome. It updates order
// in place only when this call was the one that settled it.
func (s *OrderService) settlePayment(ctx context.Context, order *model.Order) error {
	approved, err := s.payments.Charge(ctx, order.PaymentMethod, order.TotalAmount)
	if err != nil {
		return fmt.Errorf("charge order: %w", err)
	}

	status, paymentStatus := model.OrderStatusCancelled, model.PaymentStatusFailed
	if approved {
		status, paymentStatus = model.OrderStatusProcessing, model.PaymentStatusCompleted
	}

	settled, err := s.orderRepo.SettlePayment(ctx, order.ID, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	if !settled {
		return nil
	}
	order.Status, order.PaymentStatus = status, paymentStatus

	if approved && s.publisher != nil {
		msg := model.OrderMessage{OrderID: order.ID, UserID: order.UserID}
		if err := s.publisher.PublishOrder(ctx, msg); err != nil {
			s.log.Error("publish order", "order_id", order.ID, "error", err)
		}
	}
	return nil
}

// ReconcilePendingPayments settles orders whose payment is still pending
// after olderThan and returns how many it settled.
func (s *OrderService) ReconcilePendingPayments(ctx context.Context, olderThan time.Duration) (int, error) {
	orders, err := s.orderRepo.ListPendingPayment(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("list pending orders: %w", err)
	}

	settled := 0
	for i := range orders {
		order := &orders[i]
		if err := s.settlePayment(ctx, order); err != nil {
			s.log.Error("reconcile payment", "order_id", order.ID, "error", err)
			continue
		}
		if order.PaymentStatus != model.PaymentStatusPending {
			settled++
		}
	}
	return settled, nil
}

// GetByID returns nil when the order does not exist or, for non-admins,
// belongs to someone else.
func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID, role string) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, nil
	}
	if role != model.RoleAdmin && order.UserID != userID {
		return nil, nil
	}
	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	resp := dto.NewOrderListResponse(orders)
	return &resp, nil
}

func (s *OrderService) ListAll(ctx context.Context) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	resp := dto.NewOrderListResponse(orders)
	return &resp, nil
}

// UpdateStatus sets any valid status. Transitions are not restricted.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*dto.OrderResponse, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	updatedAt, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if order.Status != status && !order.Status.CanTransitionTo(status) {
		s.log.Warn("order status changed outside lifecycle",
			"order_id", orderID, "from", order.Status, "to", status)
	}

	order.Status = status
	order.UpdatedAt = updatedAt
	resp := dto.NewOrderResponse(order)
	return &resp, nil
}

// newOrderNumber builds ORD-<unix millis>-<user prefix>-<random suffix>.
func newOrderNumber(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s-%s", now.UnixMilli(), userID.String()[:8], uuid.NewString()[:4])
}
