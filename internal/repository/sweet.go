package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/domain"
	"github.com/yizeng/gab/gin/gorm/sweet-shop/internal/repository/dao"
)

var (
	ErrSweetNotFound     = dao.ErrSweetNotFound
	ErrSweetNameExists   = dao.ErrSweetNameExists
	ErrInsufficientStock = dao.ErrInsufficientStock
)

type SweetDAO interface {
	Insert(ctx context.Context, sweet dao.Sweet) (dao.Sweet, error)
	FindByID(ctx context.Context, id uint) (dao.Sweet, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (dao.Sweet, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query dao.SweetQuery, offset, limit int) ([]dao.Sweet, error)
	AdjustQuantity(ctx context.Context, id uint, delta int) (dao.Sweet, error)
}

type SweetRepository struct {
	dao SweetDAO
}

func NewSweetRepository(dao SweetDAO) *SweetRepository {
	return &SweetRepository{
		dao: dao,
	}
}

func (r *SweetRepository) domainToDao(s domain.Sweet) dao.Sweet {
	return dao.Sweet{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		Price:       s.Price,
		Quantity:    s.Quantity,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *SweetRepository) daoToDomain(s dao.Sweet) domain.Sweet {
	return domain.Sweet{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		Price:       s.Price,
		Quantity:    s.Quantity,
		IsAvailable: s.Quantity > 0,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r *SweetRepository) filtersToQuery(f domain.SweetFilters) dao.SweetQuery {
	return dao.SweetQuery{
		Name:     f.Name,
		Category: f.Category,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
	}
}

func (r *SweetRepository) updateToFields(u domain.SweetUpdate) map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Price != nil {
		fields["price"] = *u.Price
	}
	if u.Quantity != nil {
		fields["quantity"] = *u.Quantity
	}
	return fields
}

func (r *SweetRepository) Create(ctx context.Context, sweet domain.Sweet) (domain.Sweet, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(sweet))
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id uint) (domain.Sweet, error) {
	sweet, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(sweet), nil
}

func (r *SweetRepository) Update(ctx context.Context, id uint, update domain.SweetUpdate) (domain.Sweet, error) {
	fields := r.updateToFields(update)
	updated, err := r.dao.Update(ctx, id, fields)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *SweetRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *SweetRepository) List(ctx context.Context, filters domain.SweetFilters, page domain.Pagination) ([]domain.Sweet, error) {
	found, err := r.dao.List(ctx, r.filtersToQuery(filters), page.Offset(), page.Limit())
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	sweets := make([]domain.Sweet, len(found))
	for i, s := range found {
		sweets[i] = r.daoToDomain(s)
	}

	return sweets, nil
}

func (r *SweetRepository) AdjustQuantity(ctx context.Context, id uint, delta int) (domain.Sweet, error) {
	adjusted, err := r.dao.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return domain.Sweet{}, fmt.Errorf("r.dao.AdjustQuantity -> %w", err)
	}

	return r.daoToDomain(adjusted), nil
}
