package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Cancelled is reachable from Pending or Confirmed only.
const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

const (
	PaymentMethodCOD       = "COD"
	PaymentMethodUPI       = "UPI"
	PaymentMethodDebitCard = "Debit Card"
)

// orderTransitions is the allowed-transition table for order statuses.
var orderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCOD, PaymentMethodUPI, PaymentMethodDebitCard:
		return true
	}
	return false
}

// NeedsGateway reports whether the payment method goes through the hosted
// gateway rather than cash on delivery.
func NeedsGateway(method string) bool {
	return method != PaymentMethodCOD
}

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	Status          string          `gorm:"column:status;not null;default:Pending" json:"status"`
	DeliveryAddress string          `gorm:"column:delivery_address;not null" json:"delivery_address"`
	ContactNumber   string          `gorm:"column:contact_number;not null" json:"contact_number"`
	PaymentMethod   string          `gorm:"column:payment_method;not null" json:"payment_method"`
	TransactionID   string          `gorm:"column:transaction_id" json:"transaction_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem snapshots name and price at checkout time. Later edits to the
// product must not change what the order records.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   uint64          `gorm:"column:product_id;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;type:text;not null" json:"product_name"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
