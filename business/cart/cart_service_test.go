package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"swiftcart/domain"
	"testing"

	"github.com/shopspring/decimal"
)

type cartKey struct {
	userID    uint
	productID uint64
}

type mockCartRepo struct {
	mu    sync.Mutex
	lines map[cartKey]int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{lines: make(map[cartKey]int)}
}

func (m *mockCartRepo) Upsert(ctx context.Context, userID uint, productID uint64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines[cartKey{userID, productID}] += qty
	return nil
}

func (m *mockCartRepo) Find(ctx context.Context, userID uint, productID uint64) (domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.lines[cartKey{userID, productID}]
	if !ok {
		return domain.CartItem{}, fmt.Errorf("cart item: %w", domain.ErrNotFound)
	}
	return domain.CartItem{UserID: userID, ProductID: productID, Quantity: qty}, nil
}

func (m *mockCartRepo) FindByUser(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.CartItem
	for key, qty := range m.lines {
		if key.userID == userID {
			items = append(items, domain.CartItem{UserID: key.userID, ProductID: key.productID, Quantity: qty})
		}
	}
	return items, nil
}

func (m *mockCartRepo) SetQuantity(ctx context.Context, userID uint, productID uint64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cartKey{userID, productID}
	if _, ok := m.lines[key]; !ok {
		return fmt.Errorf("cart item: %w", domain.ErrNotFound)
	}
	m.lines[key] = qty
	return nil
}

func (m *mockCartRepo) Remove(ctx context.Context, userID uint, productID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lines, cartKey{userID, productID})
	return nil
}

func (m *mockCartRepo) Clear(ctx context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.lines {
		if key.userID == userID {
			delete(m.lines, key)
		}
	}
	return nil
}

type mockProductRepo struct {
	mu       sync.Mutex
	products map[uint64]domain.Product
}

func newMockProductRepo(products ...domain.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[uint64]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockProductRepo) FindAll(ctx context.Context, categoryID uint64) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if categoryID == 0 || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m *mockProductRepo) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestAddToCartSumsQuantities(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 10})
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddToCart(context.Background(), 7, 1, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	item, err := cartRepo.Find(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if item.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", item.Quantity)
	}
}

func TestAddToCartRejectsOverStock(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 4})
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 3); err != nil {
		t.Fatalf("first add: %v", err)
	}

	err := svc.AddToCart(context.Background(), 7, 1, 2)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}

	item, _ := cartRepo.Find(context.Background(), 7, 1)
	if item.Quantity != 3 {
		t.Errorf("quantity changed on rejected add: %d", item.Quantity)
	}
}

func TestAddToCartRejectsBadQuantity(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())

	for _, qty := range []int{0, -1} {
		err := svc.AddToCart(context.Background(), 7, 1, qty)
		if !domain.IsValidationError(err) {
			t.Errorf("AddToCart(qty=%d) = %v, want validation error", qty, err)
		}
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())

	err := svc.AddToCart(context.Background(), 7, 99, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 10})
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.UpdateQuantity(context.Background(), 7, 1, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}

	if _, err := cartRepo.Find(context.Background(), 7, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("line still present after zero update")
	}
}

func TestUpdateQuantityChecksStock(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 2})
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.UpdateQuantity(context.Background(), 7, 1, 5); !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	svc := NewCartService(newMockCartRepo(), newMockProductRepo())

	if err := svc.RemoveFromCart(context.Background(), 7, 42); err != nil {
		t.Fatalf("removing an absent line should be a no-op, got %v", err)
	}
}

func TestViewCartTotals(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(
		domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 10},
		domain.Product{ID: 2, Name: "Tray", Price: price("99.50"), Stock: 10},
	)
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddToCart(context.Background(), 7, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	view, err := svc.ViewCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if len(view.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(view.Lines))
	}
	if want := price("399.50"); !view.Total.Equal(want) {
		t.Errorf("total = %s, want %s", view.Total, want)
	}
}

func TestViewCartDropsStaleLines(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo(
		domain.Product{ID: 1, Name: "Mug", Price: price("150.00"), Stock: 10},
		domain.Product{ID: 2, Name: "Tray", Price: price("99.50"), Stock: 10},
	)
	svc := NewCartService(cartRepo, productRepo)

	if err := svc.AddToCart(context.Background(), 7, 1, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.AddToCart(context.Background(), 7, 2, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := productRepo.Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	view, err := svc.ViewCart(context.Background(), 7)
	if err != nil {
		t.Fatalf("view: %v", err)
	}

	if len(view.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(view.Lines))
	}
	if _, err := cartRepo.Find(context.Background(), 7, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stale line not dropped from cart")
	}
}
