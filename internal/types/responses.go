package types

import (
	"github.com/google/uuid"

	"github.com/rackden/rackden/internal/db/models"
)

// Slug is a type for the slug field in the response
// It is mainly used for the client to understand the type of the response
type Slug string

const (
	SuccessSlug             Slug = "success"
	ErrorSlug               Slug = "error"
	InvalidInputSlug        Slug = "invalid-input"
	NotFoundSlug            Slug = "not-found"
	PreconditionFailedSlug  Slug = "precondition-failed"
	ServerErrorSlug         Slug = "server-error"
	DispatchUnavailableSlug Slug = "dispatch-unavailable"
)

// SlugResponse is the response type for the API
type SlugResponse struct {
	Slug  Slug        `json:"slug"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ErrInvalidInput returns a SlugResponse with the InvalidInputSlug and the error message
func ErrInvalidInput(msg string) SlugResponse {
	return SlugResponse{
		Slug:  InvalidInputSlug,
		Error: msg,
	}
}

// ErrNotFoundResponse returns a SlugResponse with the NotFoundSlug and the error message
func ErrNotFoundResponse(msg string) SlugResponse {
	return SlugResponse{
		Slug:  NotFoundSlug,
		Error: msg,
	}
}

// ErrPreconditionResponse returns a SlugResponse with the PreconditionFailedSlug and the error message
func ErrPreconditionResponse(msg string) SlugResponse {
	return SlugResponse{
		Slug:  PreconditionFailedSlug,
		Error: msg,
	}
}

// ErrServer returns a SlugResponse with the ServerErrorSlug and the error message
func ErrServer(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ServerErrorSlug,
		Error: msg,
	}
}

// ErrDispatchUnavailableResponse returns a SlugResponse with the DispatchUnavailableSlug and the error message
func ErrDispatchUnavailableResponse(msg string) SlugResponse {
	return SlugResponse{
		Slug:  DispatchUnavailableSlug,
		Error: msg,
	}
}

// Success returns a SlugResponse with the SuccessSlug and the data
func Success(data interface{}) SlugResponse {
	return SlugResponse{
		Slug: SuccessSlug,
		Data: data,
	}
}

// CreateBookingResponse returns the identifier of the new aggregate
type CreateBookingResponse struct {
	AggregateID uuid.UUID `json:"aggregate_id"`
}

// EndBookingResponse always travels with a success-class transport status;
// the outcome is in the payload. Existing callers branch on this shape, so
// the asymmetry with the rest of the error model is deliberate.
type EndBookingResponse struct {
	Success bool   `json:"success"`
	Details string `json:"details"`
}

// StatusInfo is the two-field descriptor of one provisioning log event
type StatusInfo struct {
	Headline string `json:"headline"`
	Subline  string `json:"subline"`
}

// InstanceStatusUpdate is one entry in an instance's ordered log history
type InstanceStatusUpdate struct {
	StatusInfo StatusInfo             `json:"status_info"`
	Sentiment  models.StatusSentiment `json:"sentiment"`
	Time       string                 `json:"time"`

	// Deprecated: legacy flattened form of StatusInfo, kept for callers
	// that predate the structured descriptor.
	Status string `json:"status"`
}

// AssignedHostInfo describes the physical host currently bound to an
// instance
type AssignedHostInfo struct {
	Hostname string `json:"hostname"`
	IPMIFQDN string `json:"ipmi_fqdn"`
}

// InstanceStatus is the merged status record for one instance in a booking
type InstanceStatus struct {
	Instance         uuid.UUID              `json:"instance"`
	Logs             []InstanceStatusUpdate `json:"logs"`
	AssignedHostInfo *AssignedHostInfo      `json:"assigned_host_info,omitempty"`
	HostAlias        string                 `json:"host_alias"`
	Image            string                 `json:"image"`

	// Deprecated: legacy alias for AssignedHostInfo.Hostname, kept for
	// callers that predate the richer structure.
	AssignedHost *string `json:"assigned_host,omitempty"`
}

// BookingStatus is the consolidated point-in-time view of a booking
type BookingStatus struct {
	Instances map[uuid.UUID]InstanceStatus  `json:"instances"`
	Config    models.AggregateConfiguration `json:"config"`
	Template  models.Template               `json:"template"`
}

// PowerStatusResponse reports the IPMI chassis power state of an
// instance's host
type PowerStatusResponse struct {
	InstanceID uuid.UUID `json:"instance_id"`
	PowerState string    `json:"power_state"`
}

// FQDNResponse reports the out-of-band management address of an
// instance's host
type FQDNResponse struct {
	InstanceID uuid.UUID `json:"instance_id"`
	IPMIFQDN   string    `json:"ipmi_fqdn"`
}
