// Package client provides the API client for interacting with the booking API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rackden/rackden/internal/api/v1/routes"
	"github.com/rackden/rackden/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for the booking API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Booking Endpoints
	GetBookingStatus(ctx context.Context, aggregateID uuid.UUID) (*types.BookingStatus, error)
	CreateBooking(ctx context.Context, req *types.CreateBookingRequest) (uuid.UUID, error)
	EndBooking(ctx context.Context, aggregateID uuid.UUID) (types.EndBookingResponse, error)
	ReimageInstance(ctx context.Context, instanceID uuid.UUID, imageID string) error
	NotifyExpiring(ctx context.Context, aggregateID uuid.UUID, endingOverride string) error
	RequestExtension(ctx context.Context, aggregateID uuid.UUID, req *types.ExtensionRequest) error

	// IPMI Endpoints
	GetInstanceFQDN(ctx context.Context, instanceID uuid.UUID) (types.FQDNResponse, error)
	GetInstancePowerStatus(ctx context.Context, instanceID uuid.UUID) (types.PowerStatusResponse, error)
	SetInstancePower(ctx context.Context, instanceID uuid.UUID, state string) error
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		// surface the server's slug when the body carries one
		var slug types.SlugResponse
		if err := json.Unmarshal(body, &slug); err == nil && slug.Error != "" {
			return &fiber.Error{Code: statusCode, Message: slug.Error}
		}
		return &fiber.Error{Code: statusCode, Message: string(body)}
	}

	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// HealthCheck checks the health of the API server
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	var response map[string]string
	err := c.executeRequest(ctx, http.MethodGet, "/health", nil, &response)
	return response, err
}

// GetBookingStatus returns the consolidated status view of a booking
func (c *APIClient) GetBookingStatus(ctx context.Context, aggregateID uuid.UUID) (*types.BookingStatus, error) {
	var response types.BookingStatus
	err := c.executeRequest(ctx, http.MethodGet, routes.BookingStatusURL(aggregateID.String()), nil, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateBooking creates a new booking and returns its aggregate ID
func (c *APIClient) CreateBooking(ctx context.Context, req *types.CreateBookingRequest) (uuid.UUID, error) {
	var response types.CreateBookingResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.BookingCreateURL(), req, &response)
	if err != nil {
		return uuid.Nil, err
	}
	return response.AggregateID, nil
}

// EndBooking ends a booking. The outcome is in the payload; the transport
// status is success even when the booking could not be ended.
func (c *APIClient) EndBooking(ctx context.Context, aggregateID uuid.UUID) (types.EndBookingResponse, error) {
	var response types.EndBookingResponse
	err := c.executeRequest(ctx, http.MethodDelete, routes.BookingEndURL(aggregateID.String()), nil, &response)
	return response, err
}

// ReimageInstance rebuilds an instance's linked host with a new image
func (c *APIClient) ReimageInstance(ctx context.Context, instanceID uuid.UUID, imageID string) error {
	req := types.ReimageRequest{ImageID: imageID}
	return c.executeRequest(ctx, http.MethodPost, routes.BookingReimageURL(instanceID.String()), req, nil)
}

// NotifyExpiring triggers an expiry notification for a booking
func (c *APIClient) NotifyExpiring(ctx context.Context, aggregateID uuid.UUID, endingOverride string) error {
	req := types.NotifyExpiringRequest{EndingOverride: endingOverride}
	return c.executeRequest(ctx, http.MethodPost, routes.BookingNotifyExpiringURL(aggregateID.String()), req, nil)
}

// RequestExtension asks the admins for more time on a booking
func (c *APIClient) RequestExtension(ctx context.Context, aggregateID uuid.UUID, req *types.ExtensionRequest) error {
	return c.executeRequest(ctx, http.MethodPost, routes.BookingRequestExtensionURL(aggregateID.String()), req, nil)
}

// GetInstanceFQDN returns the IPMI FQDN of an instance's linked host
func (c *APIClient) GetInstanceFQDN(ctx context.Context, instanceID uuid.UUID) (types.FQDNResponse, error) {
	var response types.FQDNResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.IPMIGetFQDNURL(instanceID.String()), nil, &response)
	return response, err
}

// GetInstancePowerStatus reports the chassis power state of an instance's host
func (c *APIClient) GetInstancePowerStatus(ctx context.Context, instanceID uuid.UUID) (types.PowerStatusResponse, error) {
	var response types.PowerStatusResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.IPMIPowerStatusURL(instanceID.String()), nil, &response)
	return response, err
}

// SetInstancePower requests a chassis power transition on an instance's host
func (c *APIClient) SetInstancePower(ctx context.Context, instanceID uuid.UUID, state string) error {
	req := types.SetPowerRequest{State: state}
	return c.executeRequest(ctx, http.MethodPost, routes.IPMISetPowerURL(instanceID.String()), req, nil)
}
