// Package handlers provides HTTP request handlers for the API
package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/rackden/rackden/internal/logger"
	"github.com/rackden/rackden/internal/services"
	"github.com/rackden/rackden/internal/types"
)

// BookingHandler handles HTTP requests for booking lifecycle operations
type BookingHandler struct {
	service *services.Booking
}

// NewBookingHandler creates a new booking handler instance
func NewBookingHandler(service *services.Booking) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

// serviceError maps the service error taxonomy onto HTTP status classes
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, types.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	case errors.Is(err, types.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFoundResponse(err.Error()))
	case errors.Is(err, types.ErrPrecondition):
		return c.Status(fiber.StatusPreconditionFailed).JSON(types.ErrPreconditionResponse(err.Error()))
	case errors.Is(err, types.ErrDispatchUnavailable):
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrDispatchUnavailableResponse(err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetStatus returns the consolidated status view of a booking
func (h *BookingHandler) GetStatus(c *fiber.Ctx) error {
	aggregateID, err := parseUUIDParam(c, "agg_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid aggregate id"))
	}

	status, err := h.service.GetBookingStatus(c.Context(), aggregateID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(status)
}

// Create creates a new booking from a template and returns its identifier
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req types.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	aggregateID, err := h.service.CreateBooking(c.Context(), &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(types.CreateBookingResponse{AggregateID: aggregateID})
}

// End ends a booking. This endpoint always answers with transport
// success; the outcome travels in the payload so callers that branch on
// the body keep working.
func (h *BookingHandler) End(c *fiber.Ctx) error {
	aggregateID, err := parseUUIDParam(c, "agg_id")
	if err != nil {
		return c.JSON(types.EndBookingResponse{
			Success: false,
			Details: "invalid aggregate id",
		})
	}
	logger.Infof("Received call to end booking %s", aggregateID)
	return c.JSON(h.service.EndBooking(c.Context(), aggregateID))
}

// Reimage persists a new image selection for an instance and triggers a
// rebuild of its linked host
func (h *BookingHandler) Reimage(c *fiber.Ctx) error {
	instanceID, err := parseUUIDParam(c, "instance_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid instance id"))
	}

	var req types.ReimageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.service.ReimageInstance(c.Context(), instanceID, req.ImageID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(types.Success(nil))
}

// NotifyExpiring dispatches an expiry notification for a booking
func (h *BookingHandler) NotifyExpiring(c *fiber.Ctx) error {
	aggregateID, err := parseUUIDParam(c, "agg_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid aggregate id"))
	}

	var req types.NotifyExpiringRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.service.NotifyExpiring(c.Context(), aggregateID, req.EndingOverride); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(types.Success(nil))
}

// RequestExtension dispatches a booking extension request to the admins
func (h *BookingHandler) RequestExtension(c *fiber.Ctx) error {
	aggregateID, err := parseUUIDParam(c, "agg_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid aggregate id"))
	}

	var req types.ExtensionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	if err := h.service.RequestExtension(c.Context(), aggregateID, &req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(types.Success(nil))
}
