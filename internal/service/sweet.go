package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/domain"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/repository"
)

var (
	ErrSweetNotFound     = repository.ErrSweetNotFound
	ErrSweetNameExists   = repository.ErrSweetNameExists
	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrAdminRequired     = errors.New("this operation requires an admin user")
	ErrAmountNotPositive = errors.New("amount must be at least 1")
)

type SweetRepository interface {
	Create(ctx context.Context, sweet domain.Sweet) (domain.Sweet, error)
	FindByID(ctx context.Context, id uint) (domain.Sweet, error)
	Update(ctx context.Context, id uint, update domain.SweetUpdate) (domain.Sweet, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters domain.SweetFilters, page domain.Pagination) ([]domain.Sweet, error)
	AdjustQuantity(ctx context.Context, id uint, delta int) (domain.Sweet, error)
}

type SweetService struct {
	repo SweetRepository
}

func NewSweetService(repo SweetRepository) *SweetService {
	return &SweetService{
		repo: repo,
	}
}

func (s *SweetService) CreateSweet(ctx context.Context, sweet domain.Sweet, actor domain.User) (domain.Sweet, error) {
	if !actor.IsAdmin {
		return domain.Sweet{}, ErrAdminRequired
	}

	sweet.CreatedBy = actor.ID

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *SweetService) GetSweet(ctx context.Context, id uint) (domain.Sweet, error) {
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return sweet, nil
}

func (s *SweetService) UpdateSweet(ctx context.Context, id uint, update domain.SweetUpdate, actor domain.User) (domain.Sweet, error) {
	if !actor.IsAdmin {
		return domain.Sweet{}, ErrAdminRequired
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *SweetService) DeleteSweet(ctx context.Context, id uint, actor domain.User) error {
	if !actor.IsAdmin {
		return ErrAdminRequired
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *SweetService) ListSweets(ctx context.Context, filters domain.SweetFilters, page domain.Pagination) ([]domain.Sweet, error) {
	sweets, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return sweets, nil
}

// Purchase decrements stock on behalf of any authenticated actor. The
// negative-quantity guard lives in the store, so concurrent purchases of the
// same sweet settle to exactly one winner once stock runs out.
func (s *SweetService) Purchase(ctx context.Context, id uint, amount int, actor domain.User) (domain.Sweet, error) {
	if amount < 1 {
		return domain.Sweet{}, ErrAmountNotPositive
	}

	sweet, err := s.repo.AdjustQuantity(ctx, id, -amount)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("s.repo.AdjustQuantity -> %w", err)
	}

	return sweet, nil
}

func (s *SweetService) Restock(ctx context.Context, id uint, amount int, actor domain.User) (domain.Sweet, error) {
	if !actor.IsAdmin {
		return domain.Sweet{}, ErrAdminRequired
	}
	if amount < 1 {
		return domain.Sweet{}, ErrAmountNotPositive
	}

	sweet, err := s.repo.AdjustQuantity(ctx, id, amount)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("s.repo.AdjustQuantity -> %w", err)
	}

	return sweet, nil
}
