// Package dispatch carries provisioning actions from the booking
// coordinator to the external execution engine. Submission is
// fire-and-forget: Send enqueues and returns, it never waits for the
// action to execute. Callers must only send after their triggering store
// mutation has committed; a failed send never rolls anything back.
package dispatch

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// Situation tags a notification action with the circumstance that
// triggered it.
type Situation string

const (
	// SituationBookingExpiring is sent when a booking approaches its end date
	SituationBookingExpiring Situation = "BookingExpiring"
	// SituationRequestBookingExtension is sent when an owner asks for more time
	SituationRequestBookingExtension Situation = "RequestBookingExtension"
)

// ActionType discriminates the dispatched action variants
type ActionType string

const (
	ActionDeploy   ActionType = "deploy"
	ActionTeardown ActionType = "teardown"
	ActionReimage  ActionType = "reimage"
	ActionNotify   ActionType = "notify"
)

// KV is one free-form context entry attached to a notification
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Action is a unit of work requested from the execution engine. Actions
// are not persisted by this layer; delivery is best-effort after commit.
type Action struct {
	Type        ActionType `json:"type"`
	AggregateID uuid.UUID  `json:"aggregate_id"`

	// Reimage only
	HostID     uint      `json:"host_id,omitempty"`
	InstanceID uuid.UUID `json:"instance_id,omitempty"`

	// Notify only
	Situation Situation `json:"situation,omitempty"`
	Context   []KV      `json:"context,omitempty"`
}

// Dispatcher is the interface to the execution engine
type Dispatcher interface {
	Send(action Action) error
}

var (
	// ErrUnavailable is returned when the engine handle has not been
	// initialized yet
	ErrUnavailable = errors.New("dispatcher not initialized")
	// ErrQueueFull is returned when the engine cannot accept more work
	ErrQueueFull = errors.New("dispatch queue is full")
	// ErrClosed is returned when the engine has shut down
	ErrClosed = errors.New("dispatcher is closed")
)

// Handle is the process-wide reference to the execution engine. It is
// written exactly once during startup and read by every request after
// that, so access goes through an atomic pointer instead of a lock. The
// handle is injected into services; there is no package-level instance.
type Handle struct {
	d atomic.Pointer[Dispatcher]
}

// NewHandle creates an uninitialized handle. Sends fail with
// ErrUnavailable until Init is called.
func NewHandle() *Handle {
	return &Handle{}
}

// Init installs the dispatcher. Calling Init twice is a programmer error.
func (h *Handle) Init(d Dispatcher) {
	if d == nil {
		panic("dispatch: Init with nil dispatcher")
	}
	if !h.d.CompareAndSwap(nil, &d) {
		panic("dispatch: handle initialized twice")
	}
}

// Ready reports whether the handle has been initialized
func (h *Handle) Ready() bool {
	return h.d.Load() != nil
}

// Send submits an action to the engine, or fails with ErrUnavailable if
// the handle has not been initialized.
func (h *Handle) Send(action Action) error {
	d := h.d.Load()
	if d == nil {
		return ErrUnavailable
	}
	return (*d).Send(action)
}
