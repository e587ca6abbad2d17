package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/model"
	"billing/internal/repository"

	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, req CategoryRequest) (CategoryResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req CategoryRequest) (CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CategoryResponse{}, invalid("name", "name is required")
	}

	_, err := s.categoryRepo.FindByName(ctx, name)
	switch {
	case err == nil:
		return CategoryResponse{}, invalid("name", "category %q already exists", name)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return CategoryResponse{}, fmt.Errorf("failed to check category: %w", err)
	}

	category := model.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}
	return toCategoryResponse(category), nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	return resp, nil
}

func toCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
