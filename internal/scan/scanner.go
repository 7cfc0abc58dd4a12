package scan

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// Scanner runs every configured backend concurrently and merges their
// results into one deduplicated device list per cycle.
type Scanner struct {
	backends []Backend
	resolver VendorResolver
	logger   *logging.Logger
}

// NewScanner creates a scanner over the given backends. resolver may
// be nil to skip vendor resolution.
func NewScanner(resolver VendorResolver, backends ...Backend) *Scanner {
	return &Scanner{
		backends: backends,
		resolver: resolver,
		logger:   logging.Default(),
	}
}

// SetLogger sets the logger for cycle summaries and backend failures.
func (s *Scanner) SetLogger(logger *logging.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Scan runs all backends concurrently and merges their results.
//
// A failing backend contributes nothing but never fails the cycle;
// a machine with no classic adapter still gets BLE results and vice
// versa. When two backends report the same address (compared
// case-insensitively) the BLE observation wins because it carries
// richer evidence.
func (s *Scanner) Scan(ctx context.Context) []ScannedDevice {
	perBackend := make([][]ScannedDevice, len(s.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, backend := range s.backends {
		i, backend := i, backend
		g.Go(func() error {
			devices, err := backend.Scan(gctx)
			if err != nil {
				s.logger.Debug("scan backend failed", "backend", backend.Name(), "error", err)
				return nil
			}
			perBackend[i] = devices
			return nil
		})
	}
	g.Wait() //nolint:errcheck // backend errors are swallowed above

	merged := mergeResults(perBackend)

	if s.resolver != nil {
		for i := range merged {
			if merged[i].Vendor == nil {
				merged[i].Vendor = s.resolver.Resolve(ctx, merged[i].MAC)
			}
		}
	}

	s.logger.Info("scan cycle complete",
		"backends", len(s.backends), "devices", len(merged))
	return merged
}

// mergeResults flattens per-backend results, deduplicating by address.
// Backends are merged in priority order with BLE first, so the first
// observation of an address wins.
func mergeResults(perBackend [][]ScannedDevice) []ScannedDevice {
	ordered := make([]ScannedDevice, 0)
	for _, devices := range perBackend {
		for _, dev := range devices {
			if dev.Backend == BackendBLE {
				ordered = append(ordered, dev)
			}
		}
	}
	for _, devices := range perBackend {
		for _, dev := range devices {
			if dev.Backend != BackendBLE {
				ordered = append(ordered, dev)
			}
		}
	}

	seen := make(map[string]bool, len(ordered))
	merged := make([]ScannedDevice, 0, len(ordered))
	for _, dev := range ordered {
		key := strings.ToUpper(dev.MAC)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, dev)
	}
	return merged
}
