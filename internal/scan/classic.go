package scan

import (
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// classicRSSIPlaceholder is recorded for classic devices because an
// inquiry scan does not measure signal strength.
const classicRSSIPlaceholder = -60

// nameLookupTimeout bounds each per-device name request.
const nameLookupTimeout = 5 * time.Second

// inquirySlot is the duration of one inquiry length unit.
const inquirySlot = 1280 * time.Millisecond

// inquiryLineRe parses one device line of hcitool inq output:
//
//	AA:BB:CC:DD:EE:FF  clock offset: 0x1234  class: 0x5a020c
var inquiryLineRe = regexp.MustCompile(
	`([0-9A-Fa-f:]{17})\s+clock offset:.*class:\s*0x([0-9A-Fa-f]+)`,
)

// commandRunner executes external commands. Swapped for a fake in
// tests.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ClassicBackend discovers classic Bluetooth devices with an hcitool
// inquiry scan.
type ClassicBackend struct {
	adapter       string
	inquiryLength int
	runner        commandRunner
	logger        *logging.Logger
}

// NewClassicBackend creates a classic backend on the given adapter
// (e.g. "hci0", empty for the default). inquiryLength is in 1.28
// second units.
func NewClassicBackend(adapter string, inquiryLength int) *ClassicBackend {
	if inquiryLength <= 0 {
		inquiryLength = 8
	}
	return &ClassicBackend{
		adapter:       adapter,
		inquiryLength: inquiryLength,
		runner:        execRunner{},
		logger:        logging.Default(),
	}
}

// SetLogger sets the logger for scan diagnostics.
func (c *ClassicBackend) SetLogger(logger *logging.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Name identifies the backend.
func (c *ClassicBackend) Name() string { return BackendClassic }

// Scan runs one inquiry and resolves names for every device found.
func (c *ClassicBackend) Scan(ctx context.Context) ([]ScannedDevice, error) {
	args := c.adapterArgs()
	args = append(args, "inq", "--length", strconv.Itoa(c.inquiryLength))

	// The inquiry itself takes length * 1.28s; allow some slack on top.
	inqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.inquiryLength)*inquirySlot+5*time.Second)
	defer cancel()

	output, err := c.runner.Run(inqCtx, "hcitool", args...)
	if err != nil {
		return nil, err
	}

	var devices []ScannedDevice
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Inquiring") {
			continue
		}

		match := inquiryLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		mac := strings.ToUpper(match[1])
		class64, err := strconv.ParseUint(match[2], 16, 32)
		if err != nil {
			continue
		}
		deviceClass := uint32(class64)

		devices = append(devices, ScannedDevice{
			MAC:         mac,
			Name:        c.lookupName(ctx, mac),
			RSSI:        classicRSSIPlaceholder,
			Backend:     BackendClassic,
			DeviceClass: &deviceClass,
		})
	}
	return devices, nil
}

// lookupName asks the device for its friendly name. Failures are
// expected (device gone, no name set) and yield an empty name.
func (c *ClassicBackend) lookupName(ctx context.Context, mac string) string {
	nameCtx, cancel := context.WithTimeout(ctx, nameLookupTimeout)
	defer cancel()

	args := append(c.adapterArgs(), "name", mac)
	output, err := c.runner.Run(nameCtx, "hcitool", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func (c *ClassicBackend) adapterArgs() []string {
	if c.adapter == "" {
		return nil
	}
	return []string{"-i", c.adapter}
}
