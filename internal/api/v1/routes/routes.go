// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/rackden/rackden/internal/api/v1/handlers"
)

/*

Route ordering matters with fiber: fixed path segments (/create, /ipmi/...)
must be registered before param routes (/:agg_id/...), otherwise the param
route captures the fixed slug.

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
	// BookingPrefix is the booking resource root
	BookingPrefix = APIv1Prefix + "/booking"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Endpoint builders used by the API client
func BookingStatusURL(aggID string) string {
	return fmt.Sprintf("%s/%s/status", BookingPrefix, aggID)
}

func BookingCreateURL() string {
	return BookingPrefix + "/create"
}

func BookingEndURL(aggID string) string {
	return fmt.Sprintf("%s/%s/end", BookingPrefix, aggID)
}

func BookingReimageURL(instanceID string) string {
	return fmt.Sprintf("%s/%s/reimage", BookingPrefix, instanceID)
}

func BookingNotifyExpiringURL(aggID string) string {
	return fmt.Sprintf("%s/%s/notify/expiring", BookingPrefix, aggID)
}

func BookingRequestExtensionURL(aggID string) string {
	return fmt.Sprintf("%s/%s/request-extension", BookingPrefix, aggID)
}

func IPMIPowerStatusURL(instanceID string) string {
	return fmt.Sprintf("%s/ipmi/%s/powerstatus", BookingPrefix, instanceID)
}

func IPMISetPowerURL(instanceID string) string {
	return fmt.Sprintf("%s/ipmi/%s/setpower", BookingPrefix, instanceID)
}

func IPMIGetFQDNURL(instanceID string) string {
	return fmt.Sprintf("%s/ipmi/%s/getfqdn", BookingPrefix, instanceID)
}

// RegisterRoutes configures the booking routes on the app
func RegisterRoutes(app *fiber.App, booking *handlers.BookingHandler, ipmiHandler *handlers.IPMIHandler) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	group := app.Group(BookingPrefix)

	// fixed paths first
	group.Post("/create", booking.Create)
	group.Get("/ipmi/:instance_id/powerstatus", ipmiHandler.PowerStatus)
	group.Post("/ipmi/:instance_id/setpower", ipmiHandler.SetPower)
	group.Get("/ipmi/:instance_id/getfqdn", ipmiHandler.GetFQDN)

	// param routes last
	group.Get("/:agg_id/status", booking.GetStatus)
	group.Delete("/:agg_id/end", booking.End)
	group.Post("/:instance_id/reimage", booking.Reimage)
	group.Post("/:agg_id/notify/expiring", booking.NotifyExpiring)
	group.Post("/:agg_id/request-extension", booking.RequestExtension)
}
