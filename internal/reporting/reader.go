// Package reporting computes per-category inventory statistics straight from
// the persisted store. It never writes and needs no authorization; a reader
// may observe stock from just before or after a concurrent purchase.
package reporting

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryMetric struct {
	Category      string `json:"category"`
	SweetCount    int64  `json:"sweet_count"`
	TotalQuantity int64  `json:"total_quantity"`
}

type Reader struct {
	db *gorm.DB
}

// NewReader accepts a nil handle: an unconfigured or unreachable store
// degrades to empty metrics instead of failing the reporting surface.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{
		db: db,
	}
}

func (r *Reader) CategoryMetrics(ctx context.Context) []CategoryMetric {
	if r.db == nil {
		return []CategoryMetric{}
	}

	var metrics []CategoryMetric
	err := r.db.WithContext(ctx).
		Table("sweets").
		Select("category, COUNT(*) AS sweet_count, SUM(quantity) AS total_quantity").
		Group("category").
		Order("category ASC").
		Scan(&metrics).Error
	if err != nil {
		zap.L().Warn("failed to query category metrics", zap.Error(err))

		return []CategoryMetric{}
	}

	if metrics == nil {
		metrics = []CategoryMetric{}
	}

	return metrics
}
