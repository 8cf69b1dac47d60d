package cart

import (
	"context"
	"errors"
	"fmt"
	"swiftcart/business/product"
	"swiftcart/domain"
	"swiftcart/pkg/logger"

	"github.com/shopspring/decimal"
)

// CartRepository contract interface
type CartRepository interface {
	Upsert(ctx context.Context, userID uint, productID uint64, qty int) error
	Find(ctx context.Context, userID uint, productID uint64) (domain.CartItem, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error)
	SetQuantity(ctx context.Context, userID uint, productID uint64, qty int) error
	Remove(ctx context.Context, userID uint, productID uint64) error
	Clear(ctx context.Context, userID uint) error
}

type cartService struct {
	cartRepo    CartRepository
	productRepo product.ProductRepository
}

func NewCartService(cartRepo CartRepository, productRepo product.ProductRepository) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddToCart upserts a line: adding a product already in the cart sums the
// quantities. The combined quantity may not exceed the available stock.
func (s *cartService) AddToCart(ctx context.Context, userID uint, productID uint64, qty int) error {
	if qty < 1 {
		return domain.NewValidationError(fmt.Errorf("quantity must be at least 1"))
	}

	prod, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("Failed to find product for cart add", err)
		return err
	}

	inCart := 0
	existing, err := s.cartRepo.Find(ctx, userID, productID)
	if err == nil {
		inCart = existing.Quantity
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if !prod.InStock(inCart + qty) {
		logger.Warn("Cart add exceeds stock",
			"product_id", productID, "requested", inCart+qty, "stock", prod.Stock)
		return fmt.Errorf("product %q has %d left: %w", prod.Name, prod.Stock, domain.ErrOutOfStock)
	}

	return s.cartRepo.Upsert(ctx, userID, productID, qty)
}

// UpdateQuantity sets the line to qty; zero removes the line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID uint, productID uint64, qty int) error {
	if qty < 0 {
		return domain.NewValidationError(fmt.Errorf("quantity cannot be negative"))
	}

	if qty == 0 {
		return s.cartRepo.Remove(ctx, userID, productID)
	}

	prod, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("Failed to find product for cart update", err)
		return err
	}

	if !prod.InStock(qty) {
		return fmt.Errorf("product %q has %d left: %w", prod.Name, prod.Stock, domain.ErrOutOfStock)
	}

	return s.cartRepo.SetQuantity(ctx, userID, productID, qty)
}

// RemoveFromCart is idempotent: removing an absent line is a no-op.
func (s *cartService) RemoveFromCart(ctx context.Context, userID uint, productID uint64) error {
	return s.cartRepo.Remove(ctx, userID, productID)
}

// ViewCart joins cart lines with live products and computes per-line
// subtotals and the grand total.
func (s *cartService) ViewCart(ctx context.Context, userID uint) (domain.CartView, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart", err)
		return domain.CartView{}, err
	}

	view := domain.CartView{
		Lines: make([]domain.CartLine, 0, len(items)),
		Total: decimal.Zero,
	}

	for _, item := range items {
		prod, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// product deleted since it was added; drop the stale line
				if err := s.cartRepo.Remove(ctx, userID, item.ProductID); err != nil {
					logger.Warn("Failed to drop stale cart line", err)
				}
				continue
			}
			return domain.CartView{}, err
		}

		subtotal := prod.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, domain.CartLine{
			Item:     item,
			Product:  prod,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}

	return view, nil
}
