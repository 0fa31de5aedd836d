package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
)

// InstanceRepository provides access to instance-related database operations
type InstanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository creates a new instance repository instance
func NewInstanceRepository(db *gorm.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// Create creates a new instance in the database
func (r *InstanceRepository) Create(ctx context.Context, instance *models.Instance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

// CreateBatch creates multiple instances in the database
func (r *InstanceRepository) CreateBatch(ctx context.Context, instances []*models.Instance) error {
	if len(instances) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(instances).Error
}

// GetByID retrieves an instance by its ID
func (r *InstanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Instance, error) {
	var instance models.Instance
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&instance).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return &instance, nil
}

// ListByAggregate retrieves all instances owned by the given aggregate
func (r *InstanceRepository) ListByAggregate(ctx context.Context, aggregateID uuid.UUID) ([]models.Instance, error) {
	var instances []models.Instance
	err := r.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("created_at ASC").
		Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return instances, nil
}

// UpdateImage updates the assigned image of an instance
func (r *InstanceRepository) UpdateImage(ctx context.Context, id uuid.UUID, image string) error {
	return r.db.WithContext(ctx).Model(&models.Instance{}).
		Where("id = ?", id).
		Update(models.InstanceImageField, image).Error
}

// UpdateState updates the provisioning state of an instance
func (r *InstanceRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.InstanceState) error {
	return r.db.WithContext(ctx).Model(&models.Instance{}).
		Where("id = ?", id).
		Update(models.InstanceStateField, state).Error
}

// TerminateByAggregate marks all instances of an aggregate as terminated
// and releases their host links
func (r *InstanceRepository) TerminateByAggregate(ctx context.Context, aggregateID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Instance{}).
		Where("aggregate_id = ?", aggregateID).
		Updates(map[string]interface{}{
			models.InstanceStateField: models.InstanceStateTerminated,
			"linked_host_id":          nil,
		}).Error
}
