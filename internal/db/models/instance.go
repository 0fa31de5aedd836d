package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InstanceImageField = "image"
	InstanceStateField = "state"
)

// InstanceState is the provisioning sub-state reported for an instance.
// Transitions are driven by the execution engine; this layer only reflects
// whatever the store currently holds.
type InstanceState int

const (
	// we need unknown to be the first state to avoid conflicts with the
	// default value
	InstanceStateUnknown InstanceState = iota
	InstanceStatePending
	InstanceStateProvisioning
	InstanceStateReady
	InstanceStateReimaging
	InstanceStateTerminated
)

// Instance is one reserved machine slot within a booking. LinkedHostID is
// nil until the execution engine binds a physical host and again after
// teardown; every reader must treat nil as "host not yet assigned".
type Instance struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	AggregateID  uuid.UUID     `json:"aggregate_id" gorm:"type:uuid;not null;index"`
	Hostname     string        `json:"hostname" gorm:"varchar(255)"`
	Image        string        `json:"image" gorm:"varchar(255)"`
	Flavor       string        `json:"flavor" gorm:"varchar(255)"`
	State        InstanceState `json:"state" gorm:"index"`
	LinkedHostID *uint         `json:"linked_host_id"`
	CreatedAt    time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the caller did not supply one.
func (i *Instance) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (s InstanceState) String() string {
	return []string{
		"unknown",
		"pending",
		"provisioning",
		"ready",
		"reimaging",
		"terminated",
	}[s]
}

// ParseInstanceState converts a string into an InstanceState
func ParseInstanceState(str string) (InstanceState, error) {
	for i, state := range []string{
		"unknown",
		"pending",
		"provisioning",
		"ready",
		"reimaging",
		"terminated",
	} {
		if state == str {
			return InstanceState(i), nil
		}
	}

	return InstanceState(0), fmt.Errorf("invalid instance state: %s", str)
}

// MarshalJSON implements the json.Marshaler interface
func (s InstanceState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *InstanceState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	state, err := ParseInstanceState(str)
	if err != nil {
		return err
	}

	*s = state
	return nil
}
