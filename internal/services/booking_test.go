package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rackden/rackden/internal/db/models"
	"github.com/rackden/rackden/internal/db/repos"
	"github.com/rackden/rackden/internal/dispatch"
	"github.com/rackden/rackden/internal/types"
)

func (s *BookingServiceTestSuite) validCreateRequest(templateName string) *types.CreateBookingRequest {
	return &types.CreateBookingRequest{
		TemplateName: templateName,
		Owner:        "test-owner",
		Project:      "test-project",
		ContactEmail: "owner@example.com",
		Start:        time.Now(),
		End:          time.Now().Add(72 * time.Hour),
	}
}

func (s *BookingServiceTestSuite) TestCreateBooking() {
	template := s.createTemplate()

	aggregateID, err := s.service.CreateBooking(s.ctx, s.validCreateRequest(template.Name))
	s.Require().NoError(err)
	s.Require().NotEqual(uuid.Nil, aggregateID)

	// One instance per template host config, all pending
	instances, err := repos.NewInstanceRepository(s.db).ListByAggregate(s.ctx, aggregateID)
	s.Require().NoError(err)
	s.Require().Len(instances, 2)
	for _, instance := range instances {
		s.Require().Equal(models.InstanceStatePending, instance.State)
		s.Require().Nil(instance.LinkedHostID)
	}

	// Deploy dispatched after commit
	sent := s.dispatcher.sent()
	s.Require().Len(sent, 1)
	s.Require().Equal(dispatch.ActionDeploy, sent[0].Type)
	s.Require().Equal(aggregateID, sent[0].AggregateID)
}

func (s *BookingServiceTestSuite) TestCreateBookingInvalidRequest() {
	_, err := s.service.CreateBooking(s.ctx, &types.CreateBookingRequest{Owner: "someone"})
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrValidation)
	s.Require().Empty(s.dispatcher.sent())
}

func (s *BookingServiceTestSuite) TestCreateBookingUnknownTemplate() {
	_, err := s.service.CreateBooking(s.ctx, s.validCreateRequest("does-not-exist"))
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrValidation)

	// Nothing was persisted
	count, err := repos.NewAggregateRepository(s.db).Count(s.ctx)
	s.Require().NoError(err)
	s.Require().Zero(count)
}

func (s *BookingServiceTestSuite) TestCreateBookingSurvivesDispatchFailure() {
	template := s.createTemplate()
	s.dispatcher.fail = errors.New("engine is down")

	aggregateID, err := s.service.CreateBooking(s.ctx, s.validCreateRequest(template.Name))
	s.Require().NoError(err, "create must succeed even when deploy dispatch fails")

	// The booking is durable regardless of the dispatch outcome
	aggregate, err := repos.NewAggregateRepository(s.db).GetByID(s.ctx, aggregateID)
	s.Require().NoError(err)
	s.Require().Equal(models.AggregateStateCreated, aggregate.State)
}

func (s *BookingServiceTestSuite) TestEndBooking() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)
	host := s.createHost()
	instance := s.createInstance(aggregate.ID, &host.ID)

	result := s.service.EndBooking(s.ctx, aggregate.ID)
	s.Require().True(result.Success)
	s.Require().NotEmpty(result.Details)

	ended, err := repos.NewAggregateRepository(s.db).GetByID(s.ctx, aggregate.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.AggregateStateEnded, ended.State)

	terminated, err := repos.NewInstanceRepository(s.db).GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.InstanceStateTerminated, terminated.State)
	s.Require().Nil(terminated.LinkedHostID)

	sent := s.dispatcher.sent()
	s.Require().Len(sent, 1)
	s.Require().Equal(dispatch.ActionTeardown, sent[0].Type)
}

func (s *BookingServiceTestSuite) TestEndBookingNotFound() {
	result := s.service.EndBooking(s.ctx, uuid.New())
	s.Require().False(result.Success)
	s.Require().NotEmpty(result.Details)
	s.Require().Empty(s.dispatcher.sent())
}

func (s *BookingServiceTestSuite) TestEndBookingTwice() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)

	first := s.service.EndBooking(s.ctx, aggregate.ID)
	s.Require().True(first.Success)

	second := s.service.EndBooking(s.ctx, aggregate.ID)
	s.Require().False(second.Success)
	s.Require().Contains(second.Details, "already ended")
}

func (s *BookingServiceTestSuite) TestEndBookingDispatchFailure() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)
	s.dispatcher.fail = errors.New("engine is down")

	result := s.service.EndBooking(s.ctx, aggregate.ID)
	s.Require().False(result.Success)
	s.Require().Contains(result.Details, "teardown was not dispatched")

	// The state transition committed before the dispatch attempt
	ended, err := repos.NewAggregateRepository(s.db).GetByID(s.ctx, aggregate.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.AggregateStateEnded, ended.State)
}

func (s *BookingServiceTestSuite) TestReimageInstance() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)
	host := s.createHost()
	instance := s.createInstance(aggregate.ID, &host.ID)

	err := s.service.ReimageInstance(s.ctx, instance.ID, "debian-12")
	s.Require().NoError(err)

	updated, err := repos.NewInstanceRepository(s.db).GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal("debian-12", updated.Image)

	sent := s.dispatcher.sent()
	s.Require().Len(sent, 1)
	s.Require().Equal(dispatch.ActionReimage, sent[0].Type)
	s.Require().Equal(host.ID, sent[0].HostID)
	s.Require().Equal(instance.ID, sent[0].InstanceID)
	s.Require().Equal(aggregate.ID, sent[0].AggregateID)
}

func (s *BookingServiceTestSuite) TestReimageInstanceNotFound() {
	err := s.service.ReimageInstance(s.ctx, uuid.New(), "debian-12")
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrNotFound)
	s.Require().Empty(s.dispatcher.sent())
}

func (s *BookingServiceTestSuite) TestReimageInstanceNoLinkedHost() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)
	instance := s.createInstance(aggregate.ID, nil)

	err := s.service.ReimageInstance(s.ctx, instance.ID, "debian-12")
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrPrecondition)

	// The image field is unchanged: the check happens before any mutation
	unchanged, err := repos.NewInstanceRepository(s.db).GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal("ubuntu-22-04", unchanged.Image)
	s.Require().Empty(s.dispatcher.sent())
}

func (s *BookingServiceTestSuite) TestReimageInstanceDispatcherUninitialized() {
	template := s.createTemplate()
	aggregate := s.createAggregate(template.ID)
	host := s.createHost()
	instance := s.createInstance(aggregate.ID, &host.ID)

	service := s.newUninitializedService()
	err := service.ReimageInstance(s.ctx, instance.ID, "debian-12")
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrDispatchUnavailable)

	// The image intent committed before the dispatch step failed
	updated, repoErr := repos.NewInstanceRepository(s.db).GetByID(s.ctx, instance.ID)
	s.Require().NoError(repoErr)
	s.Require().Equal("debian-12", updated.Image)
}

func (s *BookingServiceTestSuite) TestNotifyExpiring() {
	aggregateID := uuid.New()

	err := s.service.NotifyExpiring(s.ctx, aggregateID, "2026-09-30")
	s.Require().NoError(err)

	sent := s.dispatcher.sent()
	s.Require().Len(sent, 1)
	s.Require().Equal(dispatch.ActionNotify, sent[0].Type)
	s.Require().Equal(dispatch.SituationBookingExpiring, sent[0].Situation)
	s.Require().Equal([]dispatch.KV{{Key: "ending_override", Value: "2026-09-30"}}, sent[0].Context)
}

func (s *BookingServiceTestSuite) TestNotifyExpiringDispatcherUninitialized() {
	service := s.newUninitializedService()

	err := service.NotifyExpiring(s.ctx, uuid.New(), "2026-09-30")
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrDispatchUnavailable)
}

func (s *BookingServiceTestSuite) TestRequestExtension() {
	aggregateID := uuid.New()

	err := s.service.RequestExtension(s.ctx, aggregateID, &types.ExtensionRequest{
		Date:   "2026-10-15",
		Reason: "need more soak time",
	})
	s.Require().NoError(err)

	sent := s.dispatcher.sent()
	s.Require().Len(sent, 1)
	s.Require().Equal(dispatch.ActionNotify, sent[0].Type)
	s.Require().Equal(dispatch.SituationRequestBookingExtension, sent[0].Situation)
	s.Require().Equal([]dispatch.KV{
		{Key: "extension_date", Value: "2026-10-15"},
		{Key: "extension_reason", Value: "need more soak time"},
	}, sent[0].Context)
}

func (s *BookingServiceTestSuite) TestRequestExtensionInvalid() {
	err := s.service.RequestExtension(s.ctx, uuid.New(), &types.ExtensionRequest{Date: "2026-10-15"})
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrValidation)
	s.Require().Empty(s.dispatcher.sent())
}

func (s *BookingServiceTestSuite) TestRequestExtensionDispatcherUninitialized() {
	service := s.newUninitializedService()

	err := service.RequestExtension(s.ctx, uuid.New(), &types.ExtensionRequest{
		Date:   "2026-10-15",
		Reason: "need more soak time",
	})
	s.Require().Error(err)
	s.Require().ErrorIs(err, types.ErrDispatchUnavailable)
}
