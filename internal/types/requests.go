// Package types contains the request and response shapes of the booking API
package types

import (
	"fmt"
	"net/mail"
	"time"
)

// CreateBookingRequest is the payload posted to /create. The
// template fixes the topology; the configuration carries the
// reservation-level settings.
type CreateBookingRequest struct {
	TemplateName string    `json:"template_name"`
	Owner        string    `json:"owner"`
	Project      string    `json:"project"`
	ContactEmail string    `json:"contact_email"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// Validate checks the booking request before any store work happens
func (r *CreateBookingRequest) Validate() error {
	if r.TemplateName == "" {
		return fmt.Errorf("template_name is required")
	}
	if r.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if r.ContactEmail != "" {
		if _, err := mail.ParseAddress(r.ContactEmail); err != nil {
			return fmt.Errorf("invalid contact_email: %w", err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && !r.End.After(r.Start) {
		return fmt.Errorf("booking end must be after start")
	}
	return nil
}

// ReimageRequest selects the image an instance should be rebuilt with
type ReimageRequest struct {
	ImageID string `json:"image_id"`
}

// Validate checks the reimage request
func (r *ReimageRequest) Validate() error {
	if r.ImageID == "" {
		return fmt.Errorf("image_id is required")
	}
	return nil
}

// ExtensionRequest asks the admins for more time on a booking
type ExtensionRequest struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// Validate checks the extension request
func (r *ExtensionRequest) Validate() error {
	if r.Date == "" {
		return fmt.Errorf("date is required")
	}
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

// NotifyExpiringRequest carries the override end date for an expiry notice
type NotifyExpiringRequest struct {
	EndingOverride string `json:"ending_override"`
}

// SetPowerRequest selects the power state for an instance's host
type SetPowerRequest struct {
	State string `json:"state"`
}
