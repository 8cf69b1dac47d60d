package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// One row per (user, product); repeated adds bump the quantity instead of
// inserting a second row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined with its live product for display.
type CartLine struct {
	Item     CartItem        `json:"item"`
	Product  Product         `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is what ViewCart returns: priced lines plus the grand total.
type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}
