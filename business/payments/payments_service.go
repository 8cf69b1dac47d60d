package payments

import (
	"context"
	"fmt"
	"strconv"
	"swiftcart/business/orders"
	"swiftcart/domain"
	"swiftcart/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentsRepository contract interface
type PaymentsRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uint) (domain.Payment, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (domain.Payment, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Payment, error)
	MarkStatus(ctx context.Context, id uint, status, gatewayPaymentID string) error
}

// GatewayRepository contract interface for the hosted payment gateway.
type GatewayRepository interface {
	CreateOrder(amount int64, receipt string, notes map[string]string) (domain.RazorpayOrderResponse, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
	Currency() string
}

// OrderConfirmer is the slice of the orders service the payment flow needs.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, orderID uint) error
}

type PaymentsService struct {
	paymentsRepo PaymentsRepository
	gatewayRepo  GatewayRepository
	ordersRepo   orders.OrdersRepository
	confirmer    OrderConfirmer
}

func NewPaymentsService(
	paymentsRepo PaymentsRepository,
	gatewayRepo GatewayRepository,
	ordersRepo orders.OrdersRepository,
	confirmer OrderConfirmer,
) *PaymentsService {
	return &PaymentsService{
		paymentsRepo: paymentsRepo,
		gatewayRepo:  gatewayRepo,
		ordersRepo:   ordersRepo,
		confirmer:    confirmer,
	}
}

// CreatePayment registers a gateway order for a Pending order and returns
// the parameters the hosted checkout needs. Amounts are converted to the
// smallest currency unit.
func (s *PaymentsService) CreatePayment(ctx context.Context, userID uint, orderID uint) (domain.CheckoutPayment, error) {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		logger.Error("Failed to find order for payment", err)
		return domain.CheckoutPayment{}, err
	}

	if order.UserID != userID {
		return domain.CheckoutPayment{}, domain.ErrForbidden
	}

	if order.Status != domain.OrderStatusPending {
		return domain.CheckoutPayment{}, fmt.Errorf("%s -> %s: %w",
			order.Status, domain.OrderStatusConfirmed, domain.ErrInvalidTransition)
	}

	if !domain.NeedsGateway(order.PaymentMethod) {
		return domain.CheckoutPayment{}, domain.NewValidationError(
			fmt.Errorf("order %d is cash on delivery", order.ID))
	}

	amountPaise := order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()
	receipt := fmt.Sprintf("rcpt_%s", uuid.NewString())

	gatewayOrder, err := s.gatewayRepo.CreateOrder(amountPaise, receipt, map[string]string{
		"internal_order_id": strconv.FormatUint(uint64(order.ID), 10),
		"user_id":           strconv.FormatUint(uint64(order.UserID), 10),
	})
	if err != nil {
		logger.Error("Gateway order creation failed", err)
		return domain.CheckoutPayment{}, fmt.Errorf("gateway order creation failed: %w", err)
	}

	if err := s.ordersRepo.UpdateTransactionID(ctx, order.ID, gatewayOrder.ID); err != nil {
		logger.Error("Failed to store gateway reference on order", err)
		return domain.CheckoutPayment{}, err
	}

	payment := domain.Payment{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Amount:         order.TotalAmount,
		Method:         order.PaymentMethod,
		Status:         domain.PaymentStatusPending,
		GatewayOrderID: gatewayOrder.ID,
	}
	if err := s.paymentsRepo.Create(ctx, &payment); err != nil {
		logger.Error("Failed to record payment", err)
		return domain.CheckoutPayment{}, err
	}

	logger.Info("Gateway payment initiated",
		"order_id", order.ID, "gateway_order_id", gatewayOrder.ID)

	return domain.CheckoutPayment{
		PaymentID:      payment.ID,
		OrderID:        order.ID,
		GatewayKeyID:   s.gatewayRepo.KeyID(),
		GatewayOrderID: gatewayOrder.ID,
		Amount:         order.TotalAmount,
		Currency:       s.gatewayRepo.Currency(),
	}, nil
}

// ConfirmPayment handles the browser checkout callback. A bad signature
// leaves the order Pending and fails with ErrPaymentVerification.
func (s *PaymentsService) ConfirmPayment(ctx context.Context, userID uint, orderID uint, gatewayOrderID, gatewayPaymentID, signature string) error {
	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		logger.Error("Failed to find order for payment confirmation", err)
		return err
	}

	if order.UserID != userID {
		return domain.ErrForbidden
	}

	if order.TransactionID != gatewayOrderID {
		logger.Error("Gateway order id does not match order",
			"order_id", orderID, "gateway_order_id", gatewayOrderID)
		return domain.ErrPaymentVerification
	}

	if !s.gatewayRepo.VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature) {
		logger.Error("Payment signature mismatch", "order_id", orderID)
		return domain.ErrPaymentVerification
	}

	if err := s.markPaid(ctx, gatewayOrderID, gatewayPaymentID); err != nil {
		return err
	}

	return s.confirmer.ConfirmOrder(ctx, order.ID)
}

// HandleWebhookEvent processes a signature-verified gateway event.
// payment.captured confirms the order (idempotently), payment.failed marks
// the payment FAILED and leaves the order Pending.
func (s *PaymentsService) HandleWebhookEvent(ctx context.Context, event domain.RazorpayWebhookEvent) error {
	entity := event.Payload.Payment.Entity

	switch event.Event {
	case domain.RazorpayEventPaymentCaptured:
		order, err := s.ordersRepo.FindByTransactionID(ctx, entity.OrderID)
		if err != nil {
			logger.Error("Webhook for unknown gateway order", "gateway_order_id", entity.OrderID)
			return err
		}

		if err := s.markPaid(ctx, entity.OrderID, entity.ID); err != nil {
			return err
		}

		return s.confirmer.ConfirmOrder(ctx, order.ID)

	case domain.RazorpayEventPaymentFailed:
		payment, err := s.paymentsRepo.FindByGatewayOrderID(ctx, entity.OrderID)
		if err != nil {
			logger.Error("Webhook failure for unknown payment", "gateway_order_id", entity.OrderID)
			return err
		}

		if err := s.paymentsRepo.MarkStatus(ctx, payment.ID, domain.PaymentStatusFailed, entity.ID); err != nil {
			return err
		}

		logger.Warn("Gateway payment failed",
			"gateway_order_id", entity.OrderID, "reason", entity.ErrorDescription)
		return nil

	default:
		logger.Info("Ignoring gateway event", "event", event.Event)
		return nil
	}
}

// VerifyWebhookSignature is exposed for the webhook handler, which needs the
// raw request body.
func (s *PaymentsService) VerifyWebhookSignature(body []byte, signature string) bool {
	return s.gatewayRepo.VerifyWebhookSignature(body, signature)
}

func (s *PaymentsService) GetPayment(ctx context.Context, userID uint, paymentID uint) (domain.Payment, error) {
	payment, err := s.paymentsRepo.FindByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}

	if payment.UserID != userID {
		return domain.Payment{}, domain.ErrForbidden
	}

	return payment, nil
}

func (s *PaymentsService) ListPayments(ctx context.Context, userID uint) ([]domain.Payment, error) {
	return s.paymentsRepo.FindByUser(ctx, userID)
}

func (s *PaymentsService) markPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string) error {
	payment, err := s.paymentsRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		logger.Error("No payment recorded for gateway order", "gateway_order_id", gatewayOrderID)
		return err
	}

	if payment.Status == domain.PaymentStatusPaid {
		return nil
	}

	return s.paymentsRepo.MarkStatus(ctx, payment.ID, domain.PaymentStatusPaid, gatewayPaymentID)
}
