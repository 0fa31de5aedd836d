package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/rackden/rackden/internal/ipmi"
	"github.com/rackden/rackden/internal/services"
	"github.com/rackden/rackden/internal/types"
)

// IPMIHandler handles out-of-band power operations for booked instances.
// The booking service resolves which BMC an instance maps to; the
// controller performs the actual chassis operation.
type IPMIHandler struct {
	service    *services.Booking
	controller ipmi.Controller
}

// NewIPMIHandler creates a new IPMI handler instance
func NewIPMIHandler(service *services.Booking, controller ipmi.Controller) *IPMIHandler {
	return &IPMIHandler{
		service:    service,
		controller: controller,
	}
}

// GetFQDN returns the IPMI FQDN of the host linked to an instance
func (h *IPMIHandler) GetFQDN(c *fiber.Ctx) error {
	instanceID, err := parseUUIDParam(c, "instance_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid instance id"))
	}

	fqdn, err := h.service.GetInstanceIPMIFQDN(c.Context(), instanceID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(types.FQDNResponse{InstanceID: instanceID, IPMIFQDN: fqdn})
}

// PowerStatus reports the chassis power state of an instance's host
func (h *IPMIHandler) PowerStatus(c *fiber.Ctx) error {
	instanceID, err := parseUUIDParam(c, "instance_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid instance id"))
	}

	fqdn, err := h.service.GetInstanceIPMIFQDN(c.Context(), instanceID)
	if err != nil {
		return serviceError(c, err)
	}

	state, err := h.controller.PowerStatus(c.Context(), fqdn)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}
	return c.JSON(types.PowerStatusResponse{InstanceID: instanceID, PowerState: string(state)})
}

// SetPower requests a chassis power transition on an instance's host
func (h *IPMIHandler) SetPower(c *fiber.Ctx) error {
	instanceID, err := parseUUIDParam(c, "instance_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput("invalid instance id"))
	}

	var req types.SetPowerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}
	state, err := ipmi.ParsePowerState(req.State)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(types.ErrInvalidInput(err.Error()))
	}

	fqdn, err := h.service.GetInstanceIPMIFQDN(c.Context(), instanceID)
	if err != nil {
		return serviceError(c, err)
	}

	if err := h.controller.SetPower(c.Context(), fqdn, state); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}
	return c.JSON(types.Success(nil))
}
