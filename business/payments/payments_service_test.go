package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"swiftcart/domain"
	"testing"

	"github.com/shopspring/decimal"
)

type mockPaymentsRepo struct {
	mu        sync.Mutex
	nextID    uint
	payments  map[uint]domain.Payment
	markCalls int
}

func newMockPaymentsRepo() *mockPaymentsRepo {
	return &mockPaymentsRepo{nextID: 1, payments: make(map[uint]domain.Payment)}
}

func (m *mockPaymentsRepo) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment.ID = m.nextID
	m.nextID++
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentsRepo) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domain.Payment{}, fmt.Errorf("payment: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockPaymentsRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.GatewayOrderID == gatewayOrderID {
			return p, nil
		}
	}
	return domain.Payment{}, fmt.Errorf("payment: %w", domain.ErrNotFound)
}

func (m *mockPaymentsRepo) FindByUser(ctx context.Context, userID uint) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentsRepo) MarkStatus(ctx context.Context, id uint, status, gatewayPaymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return fmt.Errorf("payment: %w", domain.ErrNotFound)
	}
	p.Status = status
	p.GatewayPaymentID = gatewayPaymentID
	m.payments[id] = p
	m.markCalls++
	return nil
}

func (m *mockPaymentsRepo) statusWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markCalls
}

type mockOrdersRepo struct {
	mu     sync.Mutex
	orders map[uint]domain.Order
}

func newMockOrdersRepo(orders ...domain.Order) *mockOrdersRepo {
	m := &mockOrdersRepo{orders: make(map[uint]domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrdersRepo) Place(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *mockOrdersRepo) Cancel(ctx context.Context, order *domain.Order) error {
	return nil
}

func (m *mockOrdersRepo) FindByID(ctx context.Context, orderID uint) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	return o, nil
}

func (m *mockOrdersRepo) FindByTransactionID(ctx context.Context, transactionID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TransactionID == transactionID {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("order: %w", domain.ErrNotFound)
}

func (m *mockOrdersRepo) FindByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockOrdersRepo) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	o.Status = status
	m.orders[orderID] = o
	return nil
}

func (m *mockOrdersRepo) UpdateTransactionID(ctx context.Context, orderID uint, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}
	o.TransactionID = transactionID
	m.orders[orderID] = o
	return nil
}

type mockGateway struct {
	mu            sync.Mutex
	lastAmount    int64
	lastNotes     map[string]string
	validPayments bool
	validWebhooks bool
	nextOrderID   string
}

func (m *mockGateway) CreateOrder(amount int64, receipt string, notes map[string]string) (domain.RazorpayOrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAmount = amount
	m.lastNotes = notes
	return domain.RazorpayOrderResponse{ID: m.nextOrderID, Amount: amount, Currency: "INR", Receipt: receipt}, nil
}

func (m *mockGateway) VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return m.validPayments
}

func (m *mockGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return m.validWebhooks
}

func (m *mockGateway) KeyID() string { return "rzp_test_key" }

func (m *mockGateway) Currency() string { return "INR" }

type mockConfirmer struct {
	mu        sync.Mutex
	confirmed []uint
}

func (m *mockConfirmer) ConfirmOrder(ctx context.Context, orderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, orderID)
	return nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreatePayment(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("499.50"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	paymentsRepo := newMockPaymentsRepo()
	gateway := &mockGateway{nextOrderID: "order_abc123"}
	svc := NewPaymentsService(paymentsRepo, gateway, ordersRepo, &mockConfirmer{})

	checkout, err := svc.CreatePayment(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if gateway.lastAmount != 49950 {
		t.Errorf("gateway amount = %d paise, want 49950", gateway.lastAmount)
	}
	if gateway.lastNotes["internal_order_id"] != "3" {
		t.Errorf("notes missing internal order id: %v", gateway.lastNotes)
	}
	if checkout.GatewayOrderID != "order_abc123" {
		t.Errorf("gateway order id = %q", checkout.GatewayOrderID)
	}
	if checkout.GatewayKeyID != "rzp_test_key" || checkout.Currency != "INR" {
		t.Errorf("checkout params = %+v", checkout)
	}

	order, _ := ordersRepo.FindByID(context.Background(), 3)
	if order.TransactionID != "order_abc123" {
		t.Errorf("order transaction id = %q", order.TransactionID)
	}

	payment, err := paymentsRepo.FindByGatewayOrderID(context.Background(), "order_abc123")
	if err != nil {
		t.Fatalf("payment not recorded: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %q, want PENDING", payment.Status)
	}
}

func TestCreatePaymentOwnership(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	svc := NewPaymentsService(newMockPaymentsRepo(), &mockGateway{}, ordersRepo, &mockConfirmer{})

	_, err := svc.CreatePayment(context.Background(), 8, 3)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestCreatePaymentRejectsCOD(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodCOD,
	})
	svc := NewPaymentsService(newMockPaymentsRepo(), &mockGateway{}, ordersRepo, &mockConfirmer{})

	_, err := svc.CreatePayment(context.Background(), 7, 3)
	if !domain.IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreatePaymentRejectsNonPending(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusConfirmed, PaymentMethod: domain.PaymentMethodUPI,
	})
	svc := NewPaymentsService(newMockPaymentsRepo(), &mockGateway{}, ordersRepo, &mockConfirmer{})

	_, err := svc.CreatePayment(context.Background(), 7, 3)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	paymentsRepo := newMockPaymentsRepo()
	gateway := &mockGateway{nextOrderID: "order_abc123", validPayments: true}
	confirmer := &mockConfirmer{}
	svc := NewPaymentsService(paymentsRepo, gateway, ordersRepo, confirmer)

	if _, err := svc.CreatePayment(context.Background(), 7, 3); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.ConfirmPayment(context.Background(), 7, 3, "order_abc123", "pay_xyz", "sig"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(confirmer.confirmed) != 1 || confirmer.confirmed[0] != 3 {
		t.Errorf("confirmed orders = %v, want [3]", confirmer.confirmed)
	}

	payment, _ := paymentsRepo.FindByGatewayOrderID(context.Background(), "order_abc123")
	if payment.Status != domain.PaymentStatusPaid {
		t.Errorf("payment status = %q, want PAID", payment.Status)
	}
	if payment.GatewayPaymentID != "pay_xyz" {
		t.Errorf("gateway payment id = %q", payment.GatewayPaymentID)
	}
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	paymentsRepo := newMockPaymentsRepo()
	gateway := &mockGateway{nextOrderID: "order_abc123", validPayments: false}
	confirmer := &mockConfirmer{}
	svc := NewPaymentsService(paymentsRepo, gateway, ordersRepo, confirmer)

	if _, err := svc.CreatePayment(context.Background(), 7, 3); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := svc.ConfirmPayment(context.Background(), 7, 3, "order_abc123", "pay_xyz", "forged")
	if !errors.Is(err, domain.ErrPaymentVerification) {
		t.Fatalf("err = %v, want ErrPaymentVerification", err)
	}

	if len(confirmer.confirmed) != 0 {
		t.Error("order confirmed despite bad signature")
	}
	payment, _ := paymentsRepo.FindByGatewayOrderID(context.Background(), "order_abc123")
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("payment status = %q, want PENDING", payment.Status)
	}
}

func TestConfirmPaymentWrongGatewayOrder(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
		TransactionID: "order_abc123",
	})
	svc := NewPaymentsService(newMockPaymentsRepo(), &mockGateway{validPayments: true}, ordersRepo, &mockConfirmer{})

	err := svc.ConfirmPayment(context.Background(), 7, 3, "order_other", "pay_xyz", "sig")
	if !errors.Is(err, domain.ErrPaymentVerification) {
		t.Fatalf("err = %v, want ErrPaymentVerification", err)
	}
}

func TestWebhookPaymentCaptured(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	paymentsRepo := newMockPaymentsRepo()
	gateway := &mockGateway{nextOrderID: "order_abc123"}
	confirmer := &mockConfirmer{}
	svc := NewPaymentsService(paymentsRepo, gateway, ordersRepo, confirmer)

	if _, err := svc.CreatePayment(context.Background(), 7, 3); err != nil {
		t.Fatalf("create: %v", err)
	}

	event := domain.RazorpayWebhookEvent{Event: domain.RazorpayEventPaymentCaptured}
	event.Payload.Payment.Entity = domain.RazorpayPaymentEntity{ID: "pay_xyz", OrderID: "order_abc123"}

	if err := svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	// gateway retries deliver the same event again
	if err := svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("webhook retry: %v", err)
	}

	if len(confirmer.confirmed) != 2 {
		t.Errorf("ConfirmOrder calls = %d, want 2 (idempotence lives in the orders service)", len(confirmer.confirmed))
	}
	if paymentsRepo.statusWrites() != 1 {
		t.Errorf("MarkStatus calls = %d, want 1", paymentsRepo.statusWrites())
	}

	payment, _ := paymentsRepo.FindByGatewayOrderID(context.Background(), "order_abc123")
	if payment.Status != domain.PaymentStatusPaid {
		t.Errorf("payment status = %q, want PAID", payment.Status)
	}
}

func TestWebhookPaymentFailed(t *testing.T) {
	ordersRepo := newMockOrdersRepo(domain.Order{
		ID: 3, UserID: 7, TotalAmount: price("100.00"),
		Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodUPI,
	})
	paymentsRepo := newMockPaymentsRepo()
	gateway := &mockGateway{nextOrderID: "order_abc123"}
	confirmer := &mockConfirmer{}
	svc := NewPaymentsService(paymentsRepo, gateway, ordersRepo, confirmer)

	if _, err := svc.CreatePayment(context.Background(), 7, 3); err != nil {
		t.Fatalf("create: %v", err)
	}

	event := domain.RazorpayWebhookEvent{Event: domain.RazorpayEventPaymentFailed}
	event.Payload.Payment.Entity = domain.RazorpayPaymentEntity{
		ID: "pay_xyz", OrderID: "order_abc123", ErrorDescription: "card declined",
	}

	if err := svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("webhook: %v", err)
	}

	if len(confirmer.confirmed) != 0 {
		t.Error("order confirmed on a failed payment")
	}

	payment, _ := paymentsRepo.FindByGatewayOrderID(context.Background(), "order_abc123")
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("payment status = %q, want FAILED", payment.Status)
	}

	order, _ := ordersRepo.FindByID(context.Background(), 3)
	if order.Status != domain.OrderStatusPending {
		t.Errorf("order status = %q, want Pending after failure", order.Status)
	}
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	svc := NewPaymentsService(newMockPaymentsRepo(), &mockGateway{}, newMockOrdersRepo(), &mockConfirmer{})

	event := domain.RazorpayWebhookEvent{Event: "refund.processed"}
	if err := svc.HandleWebhookEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown events should be ignored, got %v", err)
	}
}

func TestGetPaymentOwnership(t *testing.T) {
	paymentsRepo := newMockPaymentsRepo()
	payment := domain.Payment{OrderID: 3, UserID: 7, Amount: price("100.00"), Status: domain.PaymentStatusPaid}
	paymentsRepo.Create(context.Background(), &payment)

	svc := NewPaymentsService(paymentsRepo, &mockGateway{}, newMockOrdersRepo(), &mockConfirmer{})

	if _, err := svc.GetPayment(context.Background(), 8, payment.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetPayment(context.Background(), 7, payment.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}
}
