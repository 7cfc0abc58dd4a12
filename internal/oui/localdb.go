package oui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// prefixLen is the number of hex characters in an OUI prefix.
const prefixLen = 6

// LocalDB is a lookup table built from the IEEE OUI registry file.
//
// The registry is refreshed from its upstream URL at most once per
// process, on first use. A failed refresh falls back to whatever copy
// is already on disk and is not retried.
type LocalDB struct {
	path   string
	url    string
	client *http.Client
	logger *logging.Logger

	mu      sync.Mutex
	updated bool
	entries map[string]string
}

// NewLocalDB creates a registry lookup backed by the file at path,
// refreshed from url.
func NewLocalDB(path, url string, timeout time.Duration) *LocalDB {
	return &LocalDB{
		path:   path,
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logging.Default(),
	}
}

// SetLogger sets the logger for database refresh activity.
func (d *LocalDB) SetLogger(logger *logging.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Lookup returns the vendor registered for the address's OUI prefix.
// The second return value is false when the prefix is not registered.
func (d *LocalDB) Lookup(ctx context.Context, address string) (string, bool, error) {
	prefix, err := Prefix(address)
	if err != nil {
		return "", false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.updated {
		d.updated = true
		if err := d.refresh(ctx); err != nil {
			d.logger.Warn("OUI registry refresh failed, using existing copy",
				"path", d.path, "error", err)
		}
	}

	if d.entries == nil {
		if err := d.load(); err != nil {
			return "", false, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
		}
	}

	vendor, ok := d.entries[prefix]
	return vendor, ok, nil
}

// Prefix extracts the normalized six-character OUI prefix from a MAC
// address in any common separator style.
func Prefix(address string) (string, error) {
	cleaned := strings.ToUpper(strings.NewReplacer(":", "", "-", "", ".", "").Replace(address))
	if len(cleaned) < prefixLen {
		return "", ErrNoPrefix
	}
	return cleaned[:prefixLen], nil
}

// refresh downloads the registry to the configured path. The download
// goes to a temp file first so a partial transfer never clobbers a
// working copy.
func (d *LocalDB) refresh(ctx context.Context) error {
	if d.url == "" {
		return nil
	}

	d.logger.Info("refreshing OUI registry", "url", d.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return fmt.Errorf("building registry request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading registry: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "oui-*.txt")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	entries, err := parseRegistry(bufio.NewScanner(io.TeeReader(resp.Body, tmp)))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("parsing registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("installing registry: %w", err)
	}

	d.entries = entries
	d.logger.Info("OUI registry refreshed", "prefixes", len(entries))
	return nil
}

// load reads the on-disk registry into memory.
func (d *LocalDB) load() error {
	f, err := os.Open(d.path)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := parseRegistry(bufio.NewScanner(f))
	if err != nil {
		return err
	}
	d.entries = entries
	return nil
}

// parseRegistry extracts prefix/vendor pairs from the IEEE oui.txt
// format. Only the "(hex)" lines carry assignments; everything else
// in the file is ignored.
func parseRegistry(scanner *bufio.Scanner) (map[string]string, error) {
	const marker = "(hex)"

	entries := make(map[string]string)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}

		prefix := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(line[:idx]), "-", ""))
		vendor := strings.TrimSpace(line[idx+len(marker):])
		if len(prefix) != prefixLen || vendor == "" {
			continue
		}
		entries[prefix] = vendor
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
