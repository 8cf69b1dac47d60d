package product

import (
	"context"
	"fmt"
	"swiftcart/domain"
	"swiftcart/pkg/logger"

	"github.com/shopspring/decimal"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAll(ctx context.Context, categoryID uint64) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint64) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, categoryID uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all products")
		return nil, fmt.Errorf("context error: %w", err)
	}

	products, err := s.productRepo.FindAll(ctx, categoryID)
	if err != nil {
		logger.Error("Failed to find all products", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
	if id == 0 {
		logger.Error("invalid product id")
		return nil, fmt.Errorf("product: %w", domain.ErrNotFound)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("failed to find product by id", err)
		return nil, err
	}

	return &product, nil
}

// checkInvariants enforces the product invariants: positive price,
// non-negative stock, non-empty name.
func checkInvariants(product *domain.Product) error {
	if product.Name == "" {
		return domain.NewValidationError(fmt.Errorf("product name is required"))
	}

	if product.Price.LessThanOrEqual(decimal.Zero) {
		return domain.NewValidationError(fmt.Errorf("price must be greater than 0"))
	}

	if product.Stock < 0 {
		return domain.NewValidationError(fmt.Errorf("stock cannot be negative"))
	}

	return nil
}

// CreateProduct is admin-only; the caller passes the acting user so the
// role check happens before any write.
func (s *productService) CreateProduct(ctx context.Context, actor domain.User, product *domain.Product) (*domain.Product, error) {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted product create")
		return nil, domain.ErrForbidden
	}

	if err := checkInvariants(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	if product.ImageURL == "" {
		product.ImageURL = domain.DefaultProductImageURL
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.Info("product created successfully")

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, actor domain.User, product *domain.Product) (*domain.Product, error) {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted product update")
		return nil, domain.ErrForbidden
	}

	if product.ID == 0 {
		return nil, domain.NewValidationError(fmt.Errorf("product ID is required"))
	}

	if err := checkInvariants(product); err != nil {
		logger.Error("Invalid product data", err)
		return nil, err
	}

	existing, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("product not found", err)
		return nil, err
	}

	// keep the existing image when the update leaves it blank
	if product.ImageURL == "" {
		product.ImageURL = existing.ImageURL
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updatedProduct, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		logger.Error("failed to fetch updated product", err)
		return nil, fmt.Errorf("failed to fetch updated product: %w", err)
	}

	logger.Info("product updated success")

	return &updatedProduct, nil
}

// DeleteProduct removes a product. Order line items carry their own copy of
// name and price, so past orders are unaffected.
func (s *productService) DeleteProduct(ctx context.Context, actor domain.User, id uint64) error {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted product delete")
		return domain.ErrForbidden
	}

	if id == 0 {
		return fmt.Errorf("product: %w", domain.ErrNotFound)
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		logger.Error("product not found", err)
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("product deleted success")

	return nil
}
