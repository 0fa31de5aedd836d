package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProvisionLogTimeField = "time"
)

// StatusSentiment classifies a provisioning log event for display purposes.
type StatusSentiment int

const (
	SentimentUnknown StatusSentiment = iota
	SentimentPositive
	SentimentNeutral
	SentimentNegative
)

// ProvisionLogEvent is one timestamped provisioning progress record for an
// instance. Events are append-only and must be presented sorted by Time
// ascending; insertion order is not a reliable proxy for chronological
// order because the execution engine reports out of band.
type ProvisionLogEvent struct {
	gorm.Model
	InstanceID uuid.UUID       `json:"instance_id" gorm:"type:uuid;not null;index"`
	Time       time.Time       `json:"time" gorm:"not null;index"`
	Headline   string          `json:"headline" gorm:"varchar(255)"`
	Detail     string          `json:"detail"`
	Sentiment  StatusSentiment `json:"sentiment"`
}

func (s StatusSentiment) String() string {
	return []string{
		"unknown",
		"positive",
		"neutral",
		"negative",
	}[s]
}

// ParseStatusSentiment converts a string into a StatusSentiment
func ParseStatusSentiment(str string) (StatusSentiment, error) {
	for i, sentiment := range []string{
		"unknown",
		"positive",
		"neutral",
		"negative",
	} {
		if sentiment == str {
			return StatusSentiment(i), nil
		}
	}

	return StatusSentiment(0), fmt.Errorf("invalid status sentiment: %s", str)
}

// MarshalJSON implements the json.Marshaler interface
func (s StatusSentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *StatusSentiment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	sentiment, err := ParseStatusSentiment(str)
	if err != nil {
		return err
	}

	*s = sentiment
	return nil
}
