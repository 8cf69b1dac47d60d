package orders

import (
	"context"
	"fmt"
	"swiftcart/business/cart"
	"swiftcart/business/product"
	"swiftcart/business/user"
	"swiftcart/domain"
	"swiftcart/pkg/logger"
	"swiftcart/pkg/metrics"

	"github.com/shopspring/decimal"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	Place(ctx context.Context, order *domain.Order) error
	Cancel(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, orderID uint) (domain.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (domain.Order, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) error
	UpdateTransactionID(ctx context.Context, orderID uint, transactionID string) error
}

type OrdersService struct {
	ordersRepo  OrdersRepository
	cartRepo    cart.CartRepository
	productRepo product.ProductRepository
	userRepo    user.UserRepository
	notifRepo   user.NotificationRepository
}

func NewOrdersService(
	ordersRepo OrdersRepository,
	cartRepo cart.CartRepository,
	productRepo product.ProductRepository,
	userRepo user.UserRepository,
	notifRepo user.NotificationRepository,
) *OrdersService {
	return &OrdersService{
		ordersRepo:  ordersRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
	}
}

const (
	SubjectOrderConfirmed   = "Your order is confirmed!"
	EmailBodyOrderConfirmed = `Hello %v, your order #%d totalling %v has been confirmed. We will let you know when it ships.`
)

// PlaceOrder turns the user's cart into an order. Stock is re-checked and
// decremented under a row lock inside the repository transaction, line items
// snapshot the price at purchase, and the cart is cleared. COD orders are
// confirmed immediately; gateway orders stay Pending until the payment
// callback or webhook confirms them.
func (s *OrdersService) PlaceOrder(ctx context.Context, userID uint, deliveryAddress, contactNumber, paymentMethod string) (domain.Order, error) {
	if !domain.ValidPaymentMethod(paymentMethod) {
		return domain.Order{}, domain.NewValidationError(fmt.Errorf("unknown payment method %q", paymentMethod))
	}

	buyer, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.Error("Failed to load user for checkout", err)
		return domain.Order{}, err
	}

	if deliveryAddress == "" {
		deliveryAddress = buyer.Address
	}
	if contactNumber == "" {
		contactNumber = buyer.ContactNumber
	}
	if deliveryAddress == "" || contactNumber == "" {
		return domain.Order{}, domain.NewValidationError(fmt.Errorf("delivery address and contact number are required"))
	}

	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart for checkout", err)
		return domain.Order{}, err
	}
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	total := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		prod, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			logger.Error("Failed to load product for checkout", err)
			return domain.Order{}, err
		}

		if !prod.InStock(item.Quantity) {
			return domain.Order{}, fmt.Errorf("product %q has %d left: %w",
				prod.Name, prod.Stock, domain.ErrOutOfStock)
		}

		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			Quantity:    item.Quantity,
			Price:       prod.Price,
		})
		total = total.Add(prod.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := domain.Order{
		UserID:          userID,
		TotalAmount:     total,
		Status:          domain.OrderStatusPending,
		DeliveryAddress: deliveryAddress,
		ContactNumber:   contactNumber,
		PaymentMethod:   paymentMethod,
		Items:           orderItems,
	}

	if err := s.ordersRepo.Place(ctx, &order); err != nil {
		logger.Error("Failed to place order", err)
		return domain.Order{}, err
	}

	// remember the address for next time, like the checkout form does
	if buyer.Address != deliveryAddress || buyer.ContactNumber != contactNumber {
		buyer.Address = deliveryAddress
		buyer.ContactNumber = contactNumber
		if err := s.userRepo.Update(ctx, &buyer); err != nil {
			logger.Warn("Failed to save checkout address to profile", err)
		}
	}

	if !domain.NeedsGateway(paymentMethod) {
		if err := s.ordersRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed); err != nil {
			logger.Error("Failed to confirm COD order", err)
			return domain.Order{}, err
		}
		order.Status = domain.OrderStatusConfirmed
		s.sendConfirmationEmail(buyer, order)
	}

	metrics.OrdersPlacedTotal.WithLabelValues(paymentMethod).Inc()
	logger.Info("Order placed", "order_id", order.ID, "user_id", userID, "method", paymentMethod)

	return order, nil
}

// ConfirmOrder moves a Pending order to Confirmed. Used by the payments
// service once the gateway reference checks out. Confirming an already
// Confirmed order is a no-op so webhook retries stay idempotent.
func (s *OrdersService) ConfirmOrder(ctx context.Context, orderID uint) error {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == domain.OrderStatusConfirmed {
		return nil
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusConfirmed) {
		return fmt.Errorf("%s -> %s: %w", order.Status, domain.OrderStatusConfirmed, domain.ErrInvalidTransition)
	}

	if err := s.ordersRepo.UpdateStatus(ctx, orderID, domain.OrderStatusConfirmed); err != nil {
		return err
	}

	if buyer, err := s.userRepo.FindByID(ctx, order.UserID); err == nil {
		order.Status = domain.OrderStatusConfirmed
		s.sendConfirmationEmail(buyer, order)
	}

	return nil
}

// CancelOrder is permitted from Pending or Confirmed only and restores the
// stock that PlaceOrder decremented.
func (s *OrdersService) CancelOrder(ctx context.Context, actor domain.User, orderID uint) (domain.Order, error) {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		logger.Error("Failed to find order for cancel", err)
		return domain.Order{}, err
	}

	if order.UserID != actor.ID && !actor.IsAdmin() {
		return domain.Order{}, domain.ErrForbidden
	}

	if !domain.CanTransition(order.Status, domain.OrderStatusCancelled) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w",
			order.Status, domain.OrderStatusCancelled, domain.ErrInvalidTransition)
	}

	if err := s.ordersRepo.Cancel(ctx, &order); err != nil {
		logger.Error("Failed to cancel order", err)
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatusCancelled
	logger.Info("Order cancelled", "order_id", order.ID)

	return order, nil
}

// ListOrders returns the user's orders newest-first.
func (s *OrdersService) ListOrders(ctx context.Context, userID uint) ([]domain.Order, error) {
	orders, err := s.ordersRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}

	return orders, nil
}

func (s *OrdersService) GetOrder(ctx context.Context, actor domain.User, orderID uint) (domain.Order, error) {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.UserID != actor.ID && !actor.IsAdmin() {
		return domain.Order{}, domain.ErrForbidden
	}

	return order, nil
}

// UpdateStatus is the admin path for Confirmed -> Shipped -> Delivered (and
// admin-side cancellation, which goes through the stock-restoring cancel).
func (s *OrdersService) UpdateStatus(ctx context.Context, actor domain.User, orderID uint, status string) (domain.Order, error) {
	if !actor.IsAdmin() {
		return domain.Order{}, domain.ErrForbidden
	}

	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, domain.NewValidationError(fmt.Errorf("unknown order status %q", status))
	}

	if status == domain.OrderStatusCancelled {
		return s.CancelOrder(ctx, actor, orderID)
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !domain.CanTransition(order.Status, status) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, status, domain.ErrInvalidTransition)
	}

	if err := s.ordersRepo.UpdateStatus(ctx, orderID, status); err != nil {
		logger.Error("Failed to update order status", err)
		return domain.Order{}, err
	}

	order.Status = status
	return order, nil
}

func (s *OrdersService) sendConfirmationEmail(buyer domain.User, order domain.Order) {
	err := s.notifRepo.SendEmail(buyer.Username, buyer.Email, SubjectOrderConfirmed,
		fmt.Sprintf(EmailBodyOrderConfirmed, buyer.Username, order.ID, order.TotalAmount.StringFixed(2)))
	if err != nil {
		logger.Warn("Failed to send order confirmation email", err)
	}
}
