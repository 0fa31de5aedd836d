package repos

import (
	"github.com/google/uuid"

	"github.com/rackden/rackden/internal/db/models"
)

func (s *DBRepositoryTestSuite) TestCreateInstance() {
	aggregate := s.createTestAggregate()
	instance := s.createTestInstance(aggregate.ID)
	s.Require().NotEqual(uuid.Nil, instance.ID)

	created, err := s.instanceRepo.GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal(instance.ID, created.ID)
	s.Require().Equal(aggregate.ID, created.AggregateID)
	s.Require().Equal("ubuntu-22-04", created.Image)
	s.Require().Nil(created.LinkedHostID)
}

func (s *DBRepositoryTestSuite) TestCreateInstanceBatch() {
	aggregate := s.createTestAggregate()

	instances := []*models.Instance{
		{AggregateID: aggregate.ID, Hostname: "node1", Image: "ubuntu-22-04", State: models.InstanceStatePending},
		{AggregateID: aggregate.ID, Hostname: "node2", Image: "fedora-39", State: models.InstanceStatePending},
	}
	err := s.instanceRepo.CreateBatch(s.ctx, instances)
	s.Require().NoError(err)

	found, err := s.instanceRepo.ListByAggregate(s.ctx, aggregate.ID)
	s.Require().NoError(err)
	s.Require().Len(found, 2)

	// Empty batch is a no-op
	s.Require().NoError(s.instanceRepo.CreateBatch(s.ctx, nil))
}

func (s *DBRepositoryTestSuite) TestUpdateInstanceImage() {
	aggregate := s.createTestAggregate()
	instance := s.createTestInstance(aggregate.ID)

	err := s.instanceRepo.UpdateImage(s.ctx, instance.ID, "debian-12")
	s.Require().NoError(err)

	updated, err := s.instanceRepo.GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal("debian-12", updated.Image)
	// the rest of the row is untouched
	s.Require().Equal(instance.Hostname, updated.Hostname)
	s.Require().Equal(instance.State, updated.State)
}

func (s *DBRepositoryTestSuite) TestTerminateByAggregate() {
	aggregate := s.createTestAggregate()
	host := s.createTestHost()

	instance := &models.Instance{
		AggregateID:  aggregate.ID,
		Hostname:     "node1",
		Image:        "ubuntu-22-04",
		State:        models.InstanceStateReady,
		LinkedHostID: &host.ID,
	}
	s.Require().NoError(s.instanceRepo.Create(s.ctx, instance))

	err := s.instanceRepo.TerminateByAggregate(s.ctx, aggregate.ID)
	s.Require().NoError(err)

	terminated, err := s.instanceRepo.GetByID(s.ctx, instance.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.InstanceStateTerminated, terminated.State)
	s.Require().Nil(terminated.LinkedHostID)
}
