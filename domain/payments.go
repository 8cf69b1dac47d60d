package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
)

// Payment records one gateway attempt for an order.
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"column:order_id;not null;index" json:"order_id"`
	UserID           uint            `gorm:"column:user_id;not null" json:"user_id"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`
	Method           string          `gorm:"column:method;not null" json:"method"`
	Status           string          `gorm:"column:status;not null;default:PENDING" json:"status"`
	GatewayOrderID   string          `gorm:"column:gateway_order_id;index" json:"gateway_order_id"`
	GatewayPaymentID string          `gorm:"column:gateway_payment_id" json:"gateway_payment_id"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// CheckoutPayment is what PlaceOrder returns for gateway methods: everything
// the frontend needs to open the hosted checkout.
type CheckoutPayment struct {
	PaymentID      uint            `json:"payment_id"`
	OrderID        uint            `json:"order_id"`
	GatewayKeyID   string          `json:"gateway_key_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}
