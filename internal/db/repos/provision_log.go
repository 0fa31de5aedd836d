package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
)

// ProvisionLogRepository provides access to per-instance provisioning
// log events
type ProvisionLogRepository struct {
	db *gorm.DB
}

// NewProvisionLogRepository creates a new provision log repository instance
func NewProvisionLogRepository(db *gorm.DB) *ProvisionLogRepository {
	return &ProvisionLogRepository{db: db}
}

// Append inserts a new log event. Events are append-only.
func (r *ProvisionLogRepository) Append(ctx context.Context, event *models.ProvisionLogEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByInstance retrieves all log events for an instance sorted by event
// time ascending. The execution engine reports out of band, so row order
// is not chronological order.
func (r *ProvisionLogRepository) ListByInstance(ctx context.Context, instanceID uuid.UUID) ([]models.ProvisionLogEvent, error) {
	var events []models.ProvisionLogEvent
	err := r.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Order(models.ProvisionLogTimeField + " ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list provision log events: %w", err)
	}
	return events, nil
}
