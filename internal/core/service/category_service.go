package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickdesk/helpdesk/internal/core/domain"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

// CategoryService implements category management. Reads are public; mutations
// are admin-gated.
type CategoryService struct {
	repo ports.CategoryRepository
}

func NewCategoryService(repo ports.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Create(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateCategoryFields(name, description); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.Category{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *CategoryService) Update(ctx context.Context, actor *domain.User, id, name, description string) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validateCategoryFields(name, description); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, name, description)
}

// Delete removes the category only. Tickets referencing it keep a dangling
// reference; there is no cascade.
func (s *CategoryService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func validateCategoryFields(name, description string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(description) > domain.MaxCategoryDescription {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrValidation, domain.MaxCategoryDescription)
	}
	return nil
}

// ensureNameFree enforces case-insensitive name uniqueness at write time. The
// unique collation index is the backstop for concurrent writers.
func (s *CategoryService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return domain.ErrCategoryExists
	}
	return nil
}
