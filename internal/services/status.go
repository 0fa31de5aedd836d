package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/repos"
	"github.com/rackden/rackden/internal/logger"
	"github.com/rackden/rackden/internal/types"
)

// GetBookingStatus reconstructs the consolidated status view of a booking:
// the aggregate configuration, its template, and one merged record per
// instance (ordered log history plus the currently linked host). The whole
// view is assembled inside one transaction and is all-or-nothing: a
// failure on any single instance fails the request rather than returning
// a partial view.
func (s *Booking) GetBookingStatus(ctx context.Context, aggregateID uuid.UUID) (*types.BookingStatus, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, types.PersistenceErrorf(tx.Error, "failed to open transaction")
	}
	defer tx.Rollback()

	aggregate, err := repos.NewAggregateRepository(tx).GetByID(ctx, aggregateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFoundErrorf("no booking found with id %s", aggregateID)
		}
		return nil, types.PersistenceErrorf(err, "failed to look up aggregate %s", aggregateID)
	}

	instances, err := repos.NewInstanceRepository(tx).ListByAggregate(ctx, aggregateID)
	if err != nil {
		return nil, types.PersistenceErrorf(err, "failed to list instances of aggregate %s", aggregateID)
	}

	logRepo := repos.NewProvisionLogRepository(tx)
	hostRepo := repos.NewHostRepository(tx)

	statuses := make(map[uuid.UUID]types.InstanceStatus, len(instances))
	for _, instance := range instances {
		events, err := logRepo.ListByInstance(ctx, instance.ID)
		if err != nil {
			return nil, types.PersistenceErrorf(err, "failed to load logs of instance %s", instance.ID)
		}

		logs := make([]types.InstanceStatusUpdate, 0, len(events))
		for _, event := range events {
			logs = append(logs, types.InstanceStatusUpdate{
				Sentiment: event.Sentiment,
				Time:      event.Time.Format(time.RFC1123Z),
				StatusInfo: types.StatusInfo{
					Headline: event.Headline,
					Subline:  event.Detail,
				},
				// legacy flattened form, see types.InstanceStatusUpdate
				Status: fmt.Sprintf("%s: %s", event.Headline, event.Detail),
			})
		}

		status := types.InstanceStatus{
			Instance:  instance.ID,
			Logs:      logs,
			HostAlias: instance.Hostname,
			Image:     instance.Image,
		}
		if instance.LinkedHostID != nil {
			host, err := hostRepo.GetByID(ctx, *instance.LinkedHostID)
			if err != nil {
				return nil, types.PersistenceErrorf(err, "failed to resolve linked host of instance %s", instance.ID)
			}
			status.AssignedHostInfo = &types.AssignedHostInfo{
				Hostname: host.ServerName,
				IPMIFQDN: host.IPMIFQDN,
			}
			serverName := host.ServerName
			status.AssignedHost = &serverName
		}
		statuses[instance.ID] = status
	}

	template, err := repos.NewTemplateRepository(tx).GetByID(ctx, aggregate.TemplateID)
	if err != nil {
		return nil, types.PersistenceErrorf(err, "failed to resolve template of aggregate %s", aggregateID)
	}

	// read-only work still commits so the transaction is never left open
	if err := tx.Commit().Error; err != nil {
		return nil, types.PersistenceErrorf(err, "failed to commit status transaction")
	}

	logger.DebugWithFields("Booking status assembled", map[string]interface{}{
		"aggregate_id": aggregateID,
		"instances":    len(statuses),
	})
	return &types.BookingStatus{
		Instances: statuses,
		Config:    aggregate.Configuration,
		Template:  *template,
	}, nil
}
