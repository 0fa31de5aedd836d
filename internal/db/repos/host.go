package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
)

// HostRepository provides read access to the physical host inventory.
// Hosts are managed by the inventory system; bookings only resolve them.
type HostRepository struct {
	db *gorm.DB
}

// NewHostRepository creates a new host repository instance
func NewHostRepository(db *gorm.DB) *HostRepository {
	return &HostRepository{db: db}
}

// GetByID retrieves a host by its ID
func (r *HostRepository) GetByID(ctx context.Context, id uint) (*models.Host, error) {
	var host models.Host
	err := r.db.WithContext(ctx).First(&host, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return &host, nil
}

// GetByServerName retrieves a host by its server name
func (r *HostRepository) GetByServerName(ctx context.Context, name string) (*models.Host, error) {
	var host models.Host
	err := r.db.WithContext(ctx).Where(&models.Host{ServerName: name}).First(&host).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return &host, nil
}

// Create inserts a host row. Used by inventory import and tests.
func (r *HostRepository) Create(ctx context.Context, host *models.Host) error {
	return r.db.WithContext(ctx).Create(host).Error
}
