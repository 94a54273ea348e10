package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrSweetNameExists   = errors.New("a sweet with this name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Sweet struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:150;unique;not null"`
	Category    string          `gorm:"size:120;index;not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	Quantity    int             `gorm:"not null;default:0"`
	CreatedBy   uint            `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// SweetQuery is the storage-side shape of the listing filters. Zero values
// mean "no predicate"; all supplied predicates are ANDed together.
type SweetQuery struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type SweetDAO struct {
	db *gorm.DB
}

func NewSweetDAO(db *gorm.DB) *SweetDAO {
	return &SweetDAO{
		db: db,
	}
}

func isUniqueNameViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, `unique constraint "uni_sweets_name"`) {
		return true
	}

	// The metrics reader and the test suite run on sqlite, where gorm's
	// error translation is the only signal we get.
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (d *SweetDAO) Insert(ctx context.Context, sweet Sweet) (Sweet, error) {
	result := d.db.WithContext(ctx).Create(&sweet)
	if result.Error != nil {
		if isUniqueNameViolation(result.Error) {
			return Sweet{}, ErrSweetNameExists
		}

		return Sweet{}, result.Error
	}

	return sweet, nil
}

func (d *SweetDAO) FindByID(ctx context.Context, id uint) (Sweet, error) {
	var sweet Sweet

	result := d.db.WithContext(ctx).First(&sweet, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Sweet{}, ErrSweetNotFound
		}

		return Sweet{}, result.Error
	}

	return sweet, nil
}

func (d *SweetDAO) Update(ctx context.Context, id uint, fields map[string]interface{}) (Sweet, error) {
	fields["updated_at"] = time.Now()

	result := d.db.WithContext(ctx).Model(&Sweet{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if isUniqueNameViolation(result.Error) {
			return Sweet{}, ErrSweetNameExists
		}

		return Sweet{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Sweet{}, ErrSweetNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *SweetDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Sweet{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSweetNotFound
	}

	return nil
}

func (d *SweetDAO) List(ctx context.Context, query SweetQuery, offset, limit int) ([]Sweet, error) {
	tx := d.db.WithContext(ctx).Model(&Sweet{})

	if query.Name != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query.Name)+"%")
	}
	if query.Category != "" {
		tx = tx.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(query.Category)+"%")
	}
	if query.MinPrice != nil {
		tx = tx.Where("price >= ?", query.MinPrice)
	}
	if query.MaxPrice != nil {
		tx = tx.Where("price <= ?", query.MaxPrice)
	}

	var sweets []Sweet
	result := tx.Order("name ASC").Offset(offset).Limit(limit).Find(&sweets)
	if result.Error != nil {
		return nil, result.Error
	}

	return sweets, nil
}

// AdjustQuantity applies quantity += delta as a single guarded UPDATE.
// The `quantity + delta >= 0` predicate lives in the statement itself, so two
// concurrent purchases can never both drain the same stock: the row is
// changed only if the guard still holds at commit time.
func (d *SweetDAO) AdjustQuantity(ctx context.Context, id uint, delta int) (Sweet, error) {
	result := d.db.WithContext(ctx).
		Model(&Sweet{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return Sweet{}, result.Error
	}

	if result.RowsAffected == 0 {
		// Guard failed or the row is gone; look once to tell them apart.
		if _, err := d.FindByID(ctx, id); err != nil {
			return Sweet{}, err
		}

		return Sweet{}, ErrInsufficientStock
	}

	return d.FindByID(ctx, id)
}
