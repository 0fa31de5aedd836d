package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rackden/rackden/internal/types"
)

// Booking flag names
const (
	flagBookingID    = "id"
	flagInstanceID   = "instance-id"
	flagTemplateName = "template"
	flagOwner        = "owner"
	flagProject      = "project"
	flagContactEmail = "contact-email"
	flagImageID      = "image-id"
	flagDate         = "date"
	flagReason       = "reason"
	flagEndOverride  = "ending-override"
)

func init() {
	bookingsCmd.AddCommand(statusBookingCmd)
	bookingsCmd.AddCommand(createBookingCmd)
	bookingsCmd.AddCommand(endBookingCmd)
	bookingsCmd.AddCommand(reimageInstanceCmd)
	bookingsCmd.AddCommand(notifyExpiringCmd)
	bookingsCmd.AddCommand(requestExtensionCmd)

	// Add flags for status
	statusBookingCmd.Flags().StringP(flagBookingID, "i", "", "Booking aggregate ID")
	_ = statusBookingCmd.MarkFlagRequired(flagBookingID)

	// Add flags for create
	createBookingCmd.Flags().StringP(flagTemplateName, "t", "", "Template name to create the booking from")
	createBookingCmd.Flags().StringP(flagOwner, "o", "", "Booking owner")
	createBookingCmd.Flags().StringP(flagProject, "p", "", "Project the booking belongs to")
	createBookingCmd.Flags().String(flagContactEmail, "", "Contact email for notifications")
	_ = createBookingCmd.MarkFlagRequired(flagTemplateName)
	_ = createBookingCmd.MarkFlagRequired(flagOwner)

	// Add flags for end
	endBookingCmd.Flags().StringP(flagBookingID, "i", "", "Booking aggregate ID")
	_ = endBookingCmd.MarkFlagRequired(flagBookingID)

	// Add flags for reimage
	reimageInstanceCmd.Flags().StringP(flagInstanceID, "I", "", "Instance ID to reimage")
	reimageInstanceCmd.Flags().String(flagImageID, "", "Image to rebuild the instance with")
	_ = reimageInstanceCmd.MarkFlagRequired(flagInstanceID)
	_ = reimageInstanceCmd.MarkFlagRequired(flagImageID)

	// Add flags for notify-expiring
	notifyExpiringCmd.Flags().StringP(flagBookingID, "i", "", "Booking aggregate ID")
	notifyExpiringCmd.Flags().String(flagEndOverride, "", "Override end date to announce")
	_ = notifyExpiringCmd.MarkFlagRequired(flagBookingID)

	// Add flags for request-extension
	requestExtensionCmd.Flags().StringP(flagBookingID, "i", "", "Booking aggregate ID")
	requestExtensionCmd.Flags().String(flagDate, "", "Requested new end date")
	requestExtensionCmd.Flags().String(flagReason, "", "Reason for the extension")
	_ = requestExtensionCmd.MarkFlagRequired(flagBookingID)
	_ = requestExtensionCmd.MarkFlagRequired(flagDate)
	_ = requestExtensionCmd.MarkFlagRequired(flagReason)
}

// GetBookingsCmd returns the bookings command tree
func GetBookingsCmd() *cobra.Command {
	return bookingsCmd
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Manage bookings",
}

func bookingIDArg(cmd *cobra.Command, flag string) (uuid.UUID, error) {
	raw, err := cmd.Flags().GetString(flag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error getting %s flag: %w", flag, err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

var statusBookingCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the consolidated status of a booking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := bookingIDArg(cmd, flagBookingID)
		if err != nil {
			return err
		}

		status, err := apiClient.GetBookingStatus(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error getting booking status: %w", err)
		}
		return printJSON(status)
	},
}

var createBookingCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a booking from a template",
	RunE: func(cmd *cobra.Command, _ []string) error {
		template, _ := cmd.Flags().GetString(flagTemplateName)
		owner, _ := cmd.Flags().GetString(flagOwner)
		project, _ := cmd.Flags().GetString(flagProject)
		email, _ := cmd.Flags().GetString(flagContactEmail)

		req := &types.CreateBookingRequest{
			TemplateName: template,
			Owner:        owner,
			Project:      project,
			ContactEmail: email,
			Start:        time.Now(),
		}
		id, err := apiClient.CreateBooking(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error creating booking: %w", err)
		}
		fmt.Println("Created booking:", id)
		return nil
	},
}

var endBookingCmd = &cobra.Command{
	Use:   "end",
	Short: "End a booking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := bookingIDArg(cmd, flagBookingID)
		if err != nil {
			return err
		}

		result, err := apiClient.EndBooking(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error ending booking: %w", err)
		}
		return printJSON(result)
	},
}

var reimageInstanceCmd = &cobra.Command{
	Use:   "reimage",
	Short: "Rebuild an instance with a new image",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := bookingIDArg(cmd, flagInstanceID)
		if err != nil {
			return err
		}
		imageID, _ := cmd.Flags().GetString(flagImageID)

		if err := apiClient.ReimageInstance(context.Background(), id, imageID); err != nil {
			return fmt.Errorf("error reimaging instance: %w", err)
		}
		fmt.Println("Reimage requested for instance:", id)
		return nil
	},
}

var notifyExpiringCmd = &cobra.Command{
	Use:   "notify-expiring",
	Short: "Send the booking owner an expiry notification",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := bookingIDArg(cmd, flagBookingID)
		if err != nil {
			return err
		}
		override, _ := cmd.Flags().GetString(flagEndOverride)

		if err := apiClient.NotifyExpiring(context.Background(), id, override); err != nil {
			return fmt.Errorf("error sending expiry notification: %w", err)
		}
		fmt.Println("Expiry notification dispatched for booking:", id)
		return nil
	},
}

var requestExtensionCmd = &cobra.Command{
	Use:   "request-extension",
	Short: "Ask the admins to extend a booking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := bookingIDArg(cmd, flagBookingID)
		if err != nil {
			return err
		}
		date, _ := cmd.Flags().GetString(flagDate)
		reason, _ := cmd.Flags().GetString(flagReason)

		req := &types.ExtensionRequest{Date: date, Reason: reason}
		if err := apiClient.RequestExtension(context.Background(), id, req); err != nil {
			return fmt.Errorf("error requesting extension: %w", err)
		}
		fmt.Println("Extension requested for booking:", id)
		return nil
	},
}
