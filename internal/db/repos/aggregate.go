// Package repos provides entity-scoped access to booking rows. Every
// repository operates on the *gorm.DB it was constructed with, which may be
// the root connection or an open transaction; callers that need multi-row
// atomicity construct their repositories against a single transaction.
package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
)

// AggregateRepository provides access to booking aggregate rows
type AggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository creates a new aggregate repository instance
func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// Create inserts a new aggregate row
func (r *AggregateRepository) Create(ctx context.Context, aggregate *models.Aggregate) error {
	return r.db.WithContext(ctx).Create(aggregate).Error
}

// GetByID retrieves an aggregate by its ID
func (r *AggregateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Aggregate, error) {
	var aggregate models.Aggregate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&aggregate).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregate: %w", err)
	}
	return &aggregate, nil
}

// UpdateState updates the lifecycle state of an aggregate
func (r *AggregateRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.AggregateState) error {
	return r.db.WithContext(ctx).Model(&models.Aggregate{}).
		Where("id = ?", id).
		Update(models.AggregateStateField, state).Error
}

// Count returns the total number of aggregates
func (r *AggregateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Aggregate{}).
		Count(&count).Error
	return count, err
}
