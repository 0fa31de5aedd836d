package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/repos"
	"github.com/rackden/rackden/internal/types"
)

// GetInstanceIPMIFQDN resolves the out-of-band management address of the
// host currently linked to an instance. Power operations go through this
// resolution so callers never address BMCs directly by instance id.
func (s *Booking) GetInstanceIPMIFQDN(ctx context.Context, instanceID uuid.UUID) (string, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return "", types.PersistenceErrorf(tx.Error, "failed to open transaction")
	}
	defer tx.Rollback()

	instance, err := repos.NewInstanceRepository(tx).GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", types.NotFoundErrorf("no instance found with id %s", instanceID)
		}
		return "", types.PersistenceErrorf(err, "failed to look up instance %s", instanceID)
	}
	if instance.LinkedHostID == nil {
		return "", types.PreconditionErrorf("instance %s has no linked host", instanceID)
	}

	host, err := repos.NewHostRepository(tx).GetByID(ctx, *instance.LinkedHostID)
	if err != nil {
		return "", types.PersistenceErrorf(err, "failed to resolve linked host of instance %s", instanceID)
	}

	if err := tx.Commit().Error; err != nil {
		return "", types.PersistenceErrorf(err, "failed to commit fqdn lookup")
	}
	return host.IPMIFQDN, nil
}
