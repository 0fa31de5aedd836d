// Package ipmi talks to host baseboard management controllers out of band.
// The coordinator only resolves which BMC to address; the actual power
// control runs through a Controller implementation.
package ipmi

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rackden/rackden/internal/logger"
)

// PowerState is a requested or observed chassis power state
type PowerState string

const (
	PowerOn    PowerState = "on"
	PowerOff   PowerState = "off"
	PowerReset PowerState = "reset"
)

// ParsePowerState validates a requested power state
func ParsePowerState(str string) (PowerState, error) {
	switch PowerState(strings.ToLower(str)) {
	case PowerOn:
		return PowerOn, nil
	case PowerOff:
		return PowerOff, nil
	case PowerReset:
		return PowerReset, nil
	default:
		return "", fmt.Errorf("invalid power state: %s", str)
	}
}

// Controller performs chassis power operations against a BMC addressed by
// its IPMI FQDN
type Controller interface {
	PowerStatus(ctx context.Context, fqdn string) (PowerState, error)
	SetPower(ctx context.Context, fqdn string, state PowerState) error
}

// ToolController shells out to ipmitool for power operations. Credentials
// come from the environment of the service account running the daemon.
type ToolController struct {
	Username string
	Password string
}

// NewToolController creates an ipmitool-backed controller
func NewToolController(username, password string) *ToolController {
	return &ToolController{Username: username, Password: password}
}

func (c *ToolController) run(ctx context.Context, fqdn string, args ...string) (string, error) {
	base := []string{"-I", "lanplus", "-H", fqdn, "-U", c.Username, "-P", c.Password}
	cmd := exec.CommandContext(ctx, "ipmitool", append(base, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ipmitool %s against %s failed: %w", strings.Join(args, " "), fqdn, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PowerStatus reads the chassis power state
func (c *ToolController) PowerStatus(ctx context.Context, fqdn string) (PowerState, error) {
	out, err := c.run(ctx, fqdn, "chassis", "power", "status")
	if err != nil {
		return "", err
	}
	return ParseChassisStatus(out)
}

// SetPower requests a chassis power transition
func (c *ToolController) SetPower(ctx context.Context, fqdn string, state PowerState) error {
	if _, err := c.run(ctx, fqdn, "chassis", "power", string(state)); err != nil {
		return err
	}
	logger.InfoWithFields("Chassis power transition requested", map[string]interface{}{
		"fqdn":  fqdn,
		"state": state,
	})
	return nil
}

// ParseChassisStatus extracts the power state from ipmitool's
// "Chassis Power is on/off" output
func ParseChassisStatus(out string) (PowerState, error) {
	switch {
	case strings.HasSuffix(out, "is on"):
		return PowerOn, nil
	case strings.HasSuffix(out, "is off"):
		return PowerOff, nil
	default:
		return "", fmt.Errorf("unrecognized chassis status: %q", out)
	}
}
