package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CREATE TABLE public.products (
//     id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     category_id  BIGINT REFERENCES categories(category_id),
//     name         TEXT NOT NULL,
//     description  TEXT,
//     price        NUMERIC(10,2) NOT NULL,
//     stock        INTEGER NOT NULL DEFAULT 0,
//     image_url    TEXT,
//     created_at   TIMESTAMPTZ DEFAULT NOW(),
//     updated_at   TIMESTAMPTZ
// );

const DefaultProductImageURL = "/static/images/product_placeholder.png"

type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  uint64          `gorm:"column:category_id;default:0" json:"category_id"`
	Name        string          `gorm:"column:name;type:text;not null" json:"name"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"column:image_url;type:text" json:"image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p Product) InStock(qty int) bool {
	return qty <= p.Stock
}
