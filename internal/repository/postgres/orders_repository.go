package postgres

import (
	"context"
	"errors"
	"fmt"
	"swiftcart/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// Place creates the order with its line items, decrements product stock and
// clears the user's cart in one transaction. Product rows are locked with
// SELECT ... FOR UPDATE so two concurrent checkouts of the last unit cannot
// both succeed; the losing transaction sees the decremented stock and gets
// domain.ErrOutOfStock. A failure anywhere rolls the whole order back.
func (r *OrdersRepository) Place(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product domain.Product

			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", item.ProductID, domain.ErrNotFound)
				}
				return err
			}

			if product.Stock < item.Quantity {
				return fmt.Errorf("product %q has %d left: %w",
					product.Name, product.Stock, domain.ErrOutOfStock)
			}

			if err := tx.Model(&domain.Product{}).Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", order.UserID).Delete(&domain.CartItem{}).Error
	})
}

// Cancel restores the decremented stock and marks the order Cancelled in one
// transaction. The caller has already checked the status transition.
func (r *OrdersRepository) Cancel(ctx context.Context, order *domain.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product domain.Product

			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, item.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// product hard-deleted by an admin; nothing to restore
					continue
				}
				return err
			}

			if err := tx.Model(&domain.Product{}).Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&domain.Order{}).Where("id = ?", order.ID).
			Update("status", domain.OrderStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("order: %w", domain.ErrNotFound)
		}

		return nil
	})
}

func (r *OrdersRepository) FindByID(ctx context.Context, orderID uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, fmt.Errorf("order: %w", domain.ErrNotFound)
		}
		return domain.Order{}, err
	}

	return order, nil
}

func (r *OrdersRepository) FindByTransactionID(ctx context.Context, transactionID string) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Where("transaction_id = ?", transactionID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, fmt.Errorf("order: %w", domain.ErrNotFound)
		}
		return domain.Order{}, err
	}

	return order, nil
}

// FindByUser lists a user's orders newest-first.
func (r *OrdersRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Order, error) {
	var orders []domain.Order

	err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	return orders, nil
}

func (r *OrdersRepository) UpdateStatus(ctx context.Context, orderID uint, status string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *OrdersRepository) UpdateTransactionID(ctx context.Context, orderID uint, transactionID string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("transaction_id", transactionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}

	return nil
}
