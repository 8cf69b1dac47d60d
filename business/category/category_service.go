package category

import (
	"context"
	"fmt"
	"swiftcart/domain"
	"swiftcart/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint64) (domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint64) error
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return nil, err
	}

	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint64) (domain.Category, error) {
	if id == 0 {
		return domain.Category{}, fmt.Errorf("category: %w", domain.ErrNotFound)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find category", err)
		return domain.Category{}, err
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, actor domain.User, category *domain.Category) (*domain.Category, error) {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted category create")
		return nil, domain.ErrForbidden
	}

	if category.Name == "" {
		return nil, domain.NewValidationError(fmt.Errorf("category name is required"))
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("Failed to create category", err)
		return nil, err
	}

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, actor domain.User, category *domain.Category) (*domain.Category, error) {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted category update")
		return nil, domain.ErrForbidden
	}

	if category.CategoryID == 0 {
		return nil, fmt.Errorf("category: %w", domain.ErrNotFound)
	}

	if category.Name == "" {
		return nil, domain.NewValidationError(fmt.Errorf("category name is required"))
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		logger.Error("Failed to update category", err)
		return nil, err
	}

	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, actor domain.User, id uint64) error {
	if !actor.IsAdmin() {
		logger.Error("Non-admin attempted category delete")
		return domain.ErrForbidden
	}

	if id == 0 {
		return fmt.Errorf("category: %w", domain.ErrNotFound)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete category", err)
		return err
	}

	return nil
}
