package postgres

import (
	"context"
	"errors"
	"fmt"
	"swiftcart/domain"

	"gorm.io/gorm"
)

type PaymentsRepository struct {
	DB *gorm.DB
}

func NewPaymentsRepository(db *gorm.DB) *PaymentsRepository {
	return &PaymentsRepository{
		DB: db,
	}
}

func (r *PaymentsRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if err := r.DB.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentsRepository) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	var payment domain.Payment

	err := r.DB.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payment{}, fmt.Errorf("payment: %w", domain.ErrNotFound)
		}
		return domain.Payment{}, err
	}

	return payment, nil
}

func (r *PaymentsRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (domain.Payment, error) {
	var payment domain.Payment

	err := r.DB.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payment{}, fmt.Errorf("payment: %w", domain.ErrNotFound)
		}
		return domain.Payment{}, err
	}

	return payment, nil
}

func (r *PaymentsRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Payment, error) {
	var payments []domain.Payment

	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}

	return payments, nil
}

func (r *PaymentsRepository) MarkStatus(ctx context.Context, id uint, status, gatewayPaymentID string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             status,
			"gateway_payment_id": gatewayPaymentID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment: %w", domain.ErrNotFound)
	}

	return nil
}
