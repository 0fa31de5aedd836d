package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AggregateStateField = "state"
)

// AggregateState is the lifecycle state of a booking aggregate. An ended
// aggregate never becomes active again.
type AggregateState int

const (
	// we need unknown to be the first state to avoid conflicts with the
	// default value
	AggregateStateUnknown AggregateState = iota
	AggregateStateCreated
	AggregateStateActive
	AggregateStateEnded
)

// AggregateConfiguration carries the booking metadata captured at
// creation time. It is embedded in the aggregate row rather than stored
// in its own table because it never changes independently.
type AggregateConfiguration struct {
	Owner        string    `json:"owner" gorm:"column:config_owner;varchar(255)"`
	Project      string    `json:"project" gorm:"column:config_project;varchar(255)"`
	ContactEmail string    `json:"contact_email" gorm:"column:config_contact_email;varchar(255)"`
	Start        time.Time `json:"start" gorm:"column:config_start"`
	End          time.Time `json:"end" gorm:"column:config_end"`
}

// Aggregate is the root record of one booking. Instances hang off it and
// die with it; the attached configuration is immutable after creation.
type Aggregate struct {
	ID            uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey"`
	State         AggregateState         `json:"state" gorm:"index"`
	TemplateID    uint                   `json:"template_id" gorm:"not null"`
	Configuration AggregateConfiguration `json:"configuration" gorm:"embedded"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// BeforeCreate assigns an identifier when the caller did not supply one.
func (a *Aggregate) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (s AggregateState) String() string {
	return []string{
		"unknown",
		"created",
		"active",
		"ended",
	}[s]
}

// ParseAggregateState converts a string into an AggregateState
func ParseAggregateState(str string) (AggregateState, error) {
	for i, state := range []string{
		"unknown",
		"created",
		"active",
		"ended",
	} {
		if state == str {
			return AggregateState(i), nil
		}
	}

	return AggregateState(0), fmt.Errorf("invalid aggregate state: %s", str)
}

// MarshalJSON implements the json.Marshaler interface
func (s AggregateState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *AggregateState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	state, err := ParseAggregateState(str)
	if err != nil {
		return err
	}

	*s = state
	return nil
}
