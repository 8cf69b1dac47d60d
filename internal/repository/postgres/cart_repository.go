package postgres

import (
	"context"
	"errors"
	"fmt"
	"swiftcart/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

// Upsert inserts a cart line or, when the (user, product) pair already
// exists, adds qty to the stored quantity.
func (r *CartRepository) Upsert(ctx context.Context, userID uint, productID uint64, qty int) error {
	item := domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", qty),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

func (r *CartRepository) Find(ctx context.Context, userID uint, productID uint64) (domain.CartItem, error) {
	var item domain.CartItem

	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CartItem{}, fmt.Errorf("cart item: %w", domain.ErrNotFound)
		}
		return domain.CartItem{}, err
	}

	return item, nil
}

func (r *CartRepository) FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	var items []domain.CartItem

	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find cart items: %w", err)
	}

	return items, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, userID uint, productID uint64, qty int) error {
	result := r.DB.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cart item: %w", domain.ErrNotFound)
	}

	return nil
}

// Remove deletes a cart line. Removing an absent line is a no-op.
func (r *CartRepository) Remove(ctx context.Context, userID uint, productID uint64) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.CartItem{}).Error
}

func (r *CartRepository) Clear(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}
