package oui

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nerrad567/bluehood-core/internal/classify"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// maxAPIResponse caps how much of a vendor API response is read.
const maxAPIResponse = 4096

// Options configures a Resolver.
type Options struct {
	// APIURL is the base URL of the remote vendor lookup service.
	// Empty disables remote lookups.
	APIURL string

	// APIMinInterval is the minimum spacing between remote requests.
	APIMinInterval time.Duration

	// Timeout bounds each remote request.
	Timeout time.Duration
}

// Resolver maps device addresses to vendor names.
//
// Results, including misses, are cached for the life of the process so
// each address costs at most one local and one remote lookup. The
// remote API only ever sees the three-byte OUI prefix, never a full
// address. Resolve never fails: every error path degrades to an
// unknown vendor.
type Resolver struct {
	localDB *LocalDB
	apiURL  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger

	mu    sync.RWMutex
	cache map[string]*string
}

// NewResolver creates a vendor resolver backed by the given local
// registry. localDB may be nil to skip local lookups entirely.
func NewResolver(localDB *LocalDB, opts Options) *Resolver {
	minInterval := opts.APIMinInterval
	if minInterval <= 0 {
		minInterval = time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Resolver{
		localDB: localDB,
		apiURL:  strings.TrimSuffix(opts.APIURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logging.Default(),
		cache:   make(map[string]*string),
	}
}

// SetLogger sets the logger for lookup diagnostics.
func (r *Resolver) SetLogger(logger *logging.Logger) {
	if logger != nil {
		r.logger = logger
		if r.localDB != nil {
			r.localDB.SetLogger(logger)
		}
	}
}

// Resolve returns the vendor for a device address, or nil when the
// vendor cannot be determined. Proxy UUIDs and randomized addresses
// short-circuit to nil without touching the cache or any database.
func (r *Resolver) Resolve(ctx context.Context, address string) *string {
	if classify.IsProxyUUID(address) || classify.IsRandomizedMAC(address) {
		return nil
	}

	key := strings.ToUpper(address)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	vendor := r.lookup(ctx, key)

	r.mu.Lock()
	r.cache[key] = vendor
	r.mu.Unlock()

	return vendor
}

// lookup runs the local-then-remote resolution chain.
func (r *Resolver) lookup(ctx context.Context, address string) *string {
	if r.localDB != nil {
		vendor, found, err := r.localDB.Lookup(ctx, address)
		if err != nil {
			r.logger.Debug("local OUI lookup failed", "error", err)
		} else if found {
			return &vendor
		}
	}

	return r.lookupRemote(ctx, address)
}

// lookupRemote queries the vendor API with just the OUI prefix.
// Rate limiting is shared across all callers. Every failure mode,
// including 404 (unregistered prefix) and 429 (throttled), resolves
// to nil and is cached by Resolve so it is not retried.
func (r *Resolver) lookupRemote(ctx context.Context, address string) *string {
	if r.apiURL == "" {
		return nil
	}

	prefix, err := Prefix(address)
	if err != nil {
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"/"+prefix, nil)
	if err != nil {
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("vendor API request failed", "prefix", prefix, "error", err)
		return nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponse))
		if err != nil {
			return nil
		}
		vendor := strings.TrimSpace(string(body))
		if vendor == "" {
			return nil
		}
		return &vendor
	case http.StatusNotFound:
		return nil
	case http.StatusTooManyRequests:
		r.logger.Debug("vendor API rate limited", "prefix", prefix)
		return nil
	default:
		r.logger.Debug("vendor API unexpected status", "prefix", prefix, "status", resp.StatusCode)
		return nil
	}
}

// CacheSize returns the number of cached resolutions, for diagnostics.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
