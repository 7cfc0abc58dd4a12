package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/config"
	"github.com/nerrad567/bluehood-core/internal/infrastructure/logging"
)

// stubStore is a canned device.Repository for handler tests.
type stubStore struct {
	devices   []device.Device
	sightings []device.Sighting
	hourly    map[int]int
	daily     map[int]int
}

func (s *stubStore) GetByMAC(_ context.Context, mac string) (*device.Device, error) {
	normalized := device.NormalizeMAC(mac)
	for i := range s.devices {
		if s.devices[i].MAC == normalized {
			return &s.devices[i], nil
		}
	}
	return nil, device.ErrDeviceNotFound
}

func (s *stubStore) GetAllDevices(_ context.Context, includeIgnored bool) ([]device.Device, error) {
	var out []device.Device
	for _, d := range s.devices {
		if !includeIgnored && d.Ignored {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *stubStore) GetWatchedDevices(context.Context) ([]device.Device, error) { return nil, nil }

func (s *stubStore) Upsert(context.Context, device.UpsertParams) (*device.Device, bool, error) {
	return nil, false, nil
}

func (s *stubStore) SetFriendlyName(context.Context, string, string) error { return nil }
func (s *stubStore) SetIgnored(context.Context, string, bool) error { return nil }
func (s *stubStore) SetWatched(context.Context, string, bool) error { return nil }

func (s *stubStore) GetSightings(context.Context, string, int) ([]device.Sighting, error) {
	return s.sightings, nil
}

func (s *stubStore) GetHourlyDistribution(context.Context, string, int) (map[int]int, error) {
	if s.hourly == nil {
		return map[int]int{}, nil
	}
	return s.hourly, nil
}

func (s *stubStore) GetDailyDistribution(context.Context, string, int) (map[int]int, error) {
	if s.daily == nil {
		return map[int]int{}, nil
	}
	return s.daily, nil
}

func (s *stubStore) CleanupOldSightings(context.Context, int) (int64, error) { return 0, nil }

func (s *stubStore) GetSettings(context.Context) (*device.Settings, error) {
	return &device.Settings{}, nil
}

func (s *stubStore) UpdateSettings(context.Context, *device.Settings) error { return nil }

// stubRuntime reports fixed daemon state.
type stubRuntime struct {
	running bool
	clients int
}

func (r *stubRuntime) Running() bool    { return r.running }
func (r *stubRuntime) ClientCount() int { return r.clients }

func testServer(t *testing.T, store device.Repository, runtime Runtime) *httptest.Server {
	t.Helper()

	s, err := New(Deps{
		Config:  config.Default().API,
		WS:      config.Default().WebSocket,
		Logger:  logging.Default(),
		Store:   store,
		Runtime: runtime,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(s.buildRouter())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return decoded
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Store: &stubStore{}}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without store should fail")
	}
}

func TestHandleHealth(t *testing.T) {
	ts := testServer(t, &stubStore{}, nil)

	body := getJSON(t, ts.URL+"/api/v1/health", http.StatusOK)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}

func TestHandleStatus(t *testing.T) {
	ts := testServer(t, &stubStore{}, &stubRuntime{running: true, clients: 2})

	body := getJSON(t, ts.URL+"/api/v1/status", http.StatusOK)
	if body["running"] != true {
		t.Errorf("running = %v, want true", body["running"])
	}
	if body["clients"] != float64(2) {
		t.Errorf("clients = %v, want 2", body["clients"])
	}
}

func TestHandleStatus_NoRuntime(t *testing.T) {
	ts := testServer(t, &stubStore{}, nil)

	body := getJSON(t, ts.URL+"/api/v1/status", http.StatusOK)
	if body["running"] != false {
		t.Errorf("running = %v, want false without a runtime", body["running"])
	}
}

func TestHandleListDevices(t *testing.T) {
	vendor := "Apple, Inc."
	store := &stubStore{devices: []device.Device{
		{MAC: "C4:B9:CD:11:22:33", Vendor: &vendor, DeviceType: "phone", LastSeen: time.Now()},
		{MAC: "00:1A:7D:44:55:66", DeviceType: "audio", Ignored: true},
	}}
	ts := testServer(t, store, nil)

	body := getJSON(t, ts.URL+"/api/v1/devices", http.StatusOK)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}

	body = getJSON(t, ts.URL+"/api/v1/devices?include_ignored=false", http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("filtered count = %v, want 1", body["count"])
	}

	resp, err := http.Get(ts.URL + "/api/v1/devices?include_ignored=maybe")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid include_ignored status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleGetDevice(t *testing.T) {
	store := &stubStore{devices: []device.Device{
		{MAC: "C4:B9:CD:11:22:33", DeviceType: "phone"},
	}}
	ts := testServer(t, store, nil)

	body := getJSON(t, ts.URL+"/api/v1/devices/C4:B9:CD:11:22:33", http.StatusOK)
	if body["mac"] != "C4:B9:CD:11:22:33" {
		t.Errorf("mac = %v", body["mac"])
	}

	body = getJSON(t, ts.URL+"/api/v1/devices/FF:FF:FF:FF:FF:FF", http.StatusNotFound)
	if body["code"] != ErrCodeNotFound {
		t.Errorf("code = %v, want %v", body["code"], ErrCodeNotFound)
	}
}

func TestHandleGetSightings(t *testing.T) {
	store := &stubStore{sightings: []device.Sighting{
		{ID: 1, MAC: "C4:B9:CD:11:22:33", Timestamp: time.Now()},
		{ID: 2, MAC: "C4:B9:CD:11:22:33", Timestamp: time.Now()},
	}}
	ts := testServer(t, store, nil)

	body := getJSON(t, ts.URL+"/api/v1/devices/C4:B9:CD:11:22:33/sightings", http.StatusOK)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}

	resp, err := http.Get(ts.URL + "/api/v1/devices/C4:B9:CD:11:22:33/sightings?days=-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative days status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleGetPattern(t *testing.T) {
	store := &stubStore{
		hourly: map[int]int{18: 10, 19: 12, 20: 8},
		daily:  map[int]int{0: 10, 1: 10, 2: 10},
	}
	ts := testServer(t, store, nil)

	body := getJSON(t, ts.URL+"/api/v1/devices/C4:B9:CD:11:22:33/pattern", http.StatusOK)
	if _, ok := body["pattern"]; !ok {
		t.Error("response missing pattern")
	}
	if _, ok := body["hourly_heatmap"]; !ok {
		t.Error("response missing hourly_heatmap")
	}
}
