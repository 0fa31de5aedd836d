// Package services provides business logic implementation for the API
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rackden/rackden/internal/db/models"
	"github.com/rackden/rackden/internal/db/repos"
	"github.com/rackden/rackden/internal/dispatch"
	"github.com/rackden/rackden/internal/logger"
	"github.com/rackden/rackden/internal/types"
)

// Booking coordinates the lifecycle of a booking aggregate. Every
// operation opens exactly one transaction, commits it, and only then
// submits work to the execution engine: the commit is the durability
// point, and a failed dispatch never rolls back a committed mutation.
type Booking struct {
	db       *gorm.DB
	dispatch *dispatch.Handle
}

// NewBookingService creates a new booking service instance
func NewBookingService(db *gorm.DB, handle *dispatch.Handle) *Booking {
	return &Booking{
		db:       db,
		dispatch: handle,
	}
}

// CreateBooking creates an aggregate and one instance per template host
// config in a single transaction and returns the new aggregate ID. The
// deploy action that provisions the instances is dispatched best-effort
// after commit.
func (s *Booking) CreateBooking(ctx context.Context, req *types.CreateBookingRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, types.ValidationErrorf("invalid booking request: %v", err)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return uuid.Nil, types.PersistenceErrorf(tx.Error, "failed to open transaction")
	}
	defer tx.Rollback()

	template, err := repos.NewTemplateRepository(tx).GetByName(ctx, req.TemplateName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, types.ValidationErrorf("unknown template %q", req.TemplateName)
		}
		return uuid.Nil, types.PersistenceErrorf(err, "failed to resolve template %q", req.TemplateName)
	}

	aggregate := &models.Aggregate{
		State:      models.AggregateStateCreated,
		TemplateID: template.ID,
		Configuration: models.AggregateConfiguration{
			Owner:        req.Owner,
			Project:      req.Project,
			ContactEmail: req.ContactEmail,
			Start:        req.Start,
			End:          req.End,
		},
	}
	if err := repos.NewAggregateRepository(tx).Create(ctx, aggregate); err != nil {
		return uuid.Nil, types.PersistenceErrorf(err, "failed to create aggregate")
	}

	instances := make([]*models.Instance, 0, len(template.HostConfigs))
	for _, hc := range template.HostConfigs {
		instances = append(instances, &models.Instance{
			AggregateID: aggregate.ID,
			Hostname:    hc.Hostname,
			Image:       hc.Image,
			Flavor:      hc.Flavor,
			State:       models.InstanceStatePending,
		})
	}
	if err := repos.NewInstanceRepository(tx).CreateBatch(ctx, instances); err != nil {
		return uuid.Nil, types.PersistenceErrorf(err, "failed to create instances")
	}

	if err := tx.Commit().Error; err != nil {
		return uuid.Nil, types.PersistenceErrorf(err, "failed to commit booking creation")
	}

	// The booking is durable from here on. Provisioning is the engine's
	// job; a failed handoff is logged, not returned.
	if err := s.dispatch.Send(dispatch.Action{
		Type:        dispatch.ActionDeploy,
		AggregateID: aggregate.ID,
	}); err != nil {
		logger.ErrorWithFields("Booking created but deploy was not dispatched", map[string]interface{}{
			"operation":    "CreateBooking",
			"aggregate_id": aggregate.ID,
			"error":        err.Error(),
		})
	}

	logger.InfoWithFields("Booking created", map[string]interface{}{
		"aggregate_id": aggregate.ID,
		"template":     template.Name,
		"instances":    len(instances),
	})
	return aggregate.ID, nil
}

// EndBooking moves an aggregate to its terminal state, terminates its
// instances and releases their host links, then dispatches teardown.
// The result is always a structured payload, never an error: callers of
// this endpoint branch on the payload, not the transport status.
func (s *Booking) EndBooking(ctx context.Context, aggregateID uuid.UUID) types.EndBookingResponse {
	fail := func(details string) types.EndBookingResponse {
		logger.WarnWithFields("End booking failed", map[string]interface{}{
			"operation":    "EndBooking",
			"aggregate_id": aggregateID,
			"details":      details,
		})
		return types.EndBookingResponse{Success: false, Details: details}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fail(fmt.Sprintf("failed to open transaction: %v", tx.Error))
	}
	defer tx.Rollback()

	aggregate, err := repos.NewAggregateRepository(tx).GetByID(ctx, aggregateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(fmt.Sprintf("no booking found with id %s", aggregateID))
		}
		return fail(fmt.Sprintf("failed to look up booking %s: %v", aggregateID, err))
	}
	if aggregate.State == models.AggregateStateEnded {
		return fail(fmt.Sprintf("booking %s is already ended", aggregateID))
	}

	if err := repos.NewAggregateRepository(tx).UpdateState(ctx, aggregateID, models.AggregateStateEnded); err != nil {
		return fail(fmt.Sprintf("failed to end booking %s: %v", aggregateID, err))
	}
	if err := repos.NewInstanceRepository(tx).TerminateByAggregate(ctx, aggregateID); err != nil {
		return fail(fmt.Sprintf("failed to terminate instances of booking %s: %v", aggregateID, err))
	}
	if err := tx.Commit().Error; err != nil {
		return fail(fmt.Sprintf("failed to commit end of booking %s: %v", aggregateID, err))
	}

	if err := s.dispatch.Send(dispatch.Action{
		Type:        dispatch.ActionTeardown,
		AggregateID: aggregateID,
	}); err != nil {
		// state change is committed; only the physical teardown is pending
		return fail(fmt.Sprintf("booking %s was ended but teardown was not dispatched: %v", aggregateID, err))
	}

	logger.InfoWithFields("Booking ended", map[string]interface{}{
		"aggregate_id": aggregateID,
	})
	return types.EndBookingResponse{
		Success: true,
		Details: fmt.Sprintf("successfully ended booking with agg_id %s", aggregateID),
	}
}

// ReimageInstance persists the new image selection for an instance and
// then asks the engine to rebuild the linked host. The image intent is
// durable once the transaction commits, even when the dispatch step
// fails; the caller is told the physical reimage was not triggered.
func (s *Booking) ReimageInstance(ctx context.Context, instanceID uuid.UUID, imageID string) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return types.PersistenceErrorf(tx.Error, "failed to open transaction")
	}
	defer tx.Rollback()

	instance, err := repos.NewInstanceRepository(tx).GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFoundErrorf("no instance found with id %s", instanceID)
		}
		return types.PersistenceErrorf(err, "failed to look up instance %s", instanceID)
	}
	if instance.LinkedHostID == nil {
		// nothing to rebuild; reject before touching the image field
		return types.PreconditionErrorf("instance %s has no linked host", instanceID)
	}

	if err := repos.NewInstanceRepository(tx).UpdateImage(ctx, instanceID, imageID); err != nil {
		return types.PersistenceErrorf(err, "failed to update image of instance %s", instanceID)
	}
	if err := tx.Commit().Error; err != nil {
		return types.PersistenceErrorf(err, "failed to commit image change of instance %s", instanceID)
	}

	err = s.dispatch.Send(dispatch.Action{
		Type:        dispatch.ActionReimage,
		AggregateID: instance.AggregateID,
		InstanceID:  instanceID,
		HostID:      *instance.LinkedHostID,
	})
	if err != nil {
		logger.ErrorWithFields("Image change committed but reimage was not dispatched", map[string]interface{}{
			"operation":   "ReimageInstance",
			"instance_id": instanceID,
			"image_id":    imageID,
			"error":       err.Error(),
		})
		if errors.Is(err, dispatch.ErrUnavailable) {
			return fmt.Errorf("%w: image selection is saved but the reimage was not triggered", types.ErrDispatchUnavailable)
		}
		return fmt.Errorf("%w: image selection is saved but the reimage was not triggered: %v", types.ErrDispatch, err)
	}

	logger.InfoWithFields("Reimage dispatched", map[string]interface{}{
		"instance_id": instanceID,
		"image_id":    imageID,
	})
	return nil
}

// NotifyExpiring asks the engine to notify the booking owner that the
// booking is about to expire. No store mutation happens here.
func (s *Booking) NotifyExpiring(ctx context.Context, aggregateID uuid.UUID, endingOverride string) error {
	err := s.dispatch.Send(dispatch.Action{
		Type:        dispatch.ActionNotify,
		AggregateID: aggregateID,
		Situation:   dispatch.SituationBookingExpiring,
		Context: []dispatch.KV{
			{Key: "ending_override", Value: endingOverride},
		},
	})
	return s.mapDispatchErr(err, "NotifyExpiring", aggregateID)
}

// RequestExtension asks the engine to send the admins a booking
// extension request. No store mutation happens here.
func (s *Booking) RequestExtension(ctx context.Context, aggregateID uuid.UUID, req *types.ExtensionRequest) error {
	if err := req.Validate(); err != nil {
		return types.ValidationErrorf("invalid extension request: %v", err)
	}
	err := s.dispatch.Send(dispatch.Action{
		Type:        dispatch.ActionNotify,
		AggregateID: aggregateID,
		Situation:   dispatch.SituationRequestBookingExtension,
		Context: []dispatch.KV{
			{Key: "extension_date", Value: req.Date},
			{Key: "extension_reason", Value: req.Reason},
		},
	})
	return s.mapDispatchErr(err, "RequestExtension", aggregateID)
}

func (s *Booking) mapDispatchErr(err error, operation string, aggregateID uuid.UUID) error {
	if err == nil {
		return nil
	}
	logger.ErrorWithFields("Failed to dispatch notify task", map[string]interface{}{
		"operation":    operation,
		"aggregate_id": aggregateID,
		"error":        err.Error(),
	})
	if errors.Is(err, dispatch.ErrUnavailable) {
		return fmt.Errorf("%w: unable to reach the execution engine", types.ErrDispatchUnavailable)
	}
	return fmt.Errorf("%w: %v", types.ErrDispatch, err)
}
