package daemon

import (
	"context"
	"errors"

	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/patterns"
)

// request is one decoded control-plane command. Fields beyond cmd are
// command-specific; unused fields are simply left zero.
type request struct {
	Cmd string `json:"cmd"`

	// IncludeIgnored defaults to true when absent, matching clients
	// that expect the full device list.
	IncludeIgnored *bool `json:"include_ignored,omitempty"`

	MAC  string  `json:"mac,omitempty"`
	Name *string `json:"name,omitempty"`

	Ignored bool `json:"ignored,omitempty"`
	Watched bool `json:"watched,omitempty"`

	// Days defaults to 30 when absent or zero.
	Days int `json:"days,omitempty"`

	Settings *device.Settings `json:"settings,omitempty"`
}

func okResponse() map[string]any {
	return map[string]any{"status": "ok"}
}

func errorResponse(message string) map[string]any {
	return map[string]any{"status": "error", "message": message}
}

// handleCommand dispatches one control-plane request. Storage failures
// are logged and surfaced to the client as a generic error; raw error
// detail never crosses the socket.
func (d *Daemon) handleCommand(ctx context.Context, req request) map[string]any {
	switch req.Cmd {
	case "list":
		return d.handleList(ctx, req)
	case "set_name":
		return d.handleSetName(ctx, req)
	case "set_ignored":
		return d.handleSetIgnored(ctx, req)
	case "set_watched":
		return d.handleSetWatched(ctx, req)
	case "get_sightings":
		return d.handleGetSightings(ctx, req)
	case "get_hourly":
		return d.handleGetHourly(ctx, req)
	case "get_daily":
		return d.handleGetDaily(ctx, req)
	case "get_pattern":
		return d.handleGetPattern(ctx, req)
	case "get_settings":
		return d.handleGetSettings(ctx)
	case "set_settings":
		return d.handleSetSettings(ctx, req)
	case "status":
		return d.handleStatus()
	default:
		return errorResponse("Unknown command: " + req.Cmd)
	}
}

func (d *Daemon) handleList(ctx context.Context, req request) map[string]any {
	includeIgnored := true
	if req.IncludeIgnored != nil {
		includeIgnored = *req.IncludeIgnored
	}

	devices, err := d.store.GetAllDevices(ctx, includeIgnored)
	if err != nil {
		d.logger.Error("listing devices failed", "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{"status": "ok", "devices": devices}
}

func (d *Daemon) handleSetName(ctx context.Context, req request) map[string]any {
	if req.MAC == "" || req.Name == nil {
		return errorResponse("Missing mac or name")
	}

	if err := d.store.SetFriendlyName(ctx, req.MAC, *req.Name); err != nil {
		return d.storeError("set_name", req.MAC, err)
	}
	return okResponse()
}

func (d *Daemon) handleSetIgnored(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	if err := d.store.SetIgnored(ctx, req.MAC, req.Ignored); err != nil {
		return d.storeError("set_ignored", req.MAC, err)
	}
	return okResponse()
}

func (d *Daemon) handleSetWatched(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	if err := d.store.SetWatched(ctx, req.MAC, req.Watched); err != nil {
		return d.storeError("set_watched", req.MAC, err)
	}

	// Keep the gateway's in-memory watch state aligned so a device
	// unwatched here cannot fire a stale absence alert.
	d.gateway.UpdateWatchedState(device.NormalizeMAC(req.MAC), req.Watched)

	return okResponse()
}

func (d *Daemon) handleGetSightings(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	sightings, err := d.store.GetSightings(ctx, req.MAC, req.Days)
	if err != nil {
		d.logger.Error("fetching sightings failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{"status": "ok", "sightings": sightings}
}

func (d *Daemon) handleGetHourly(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	hourly, err := d.store.GetHourlyDistribution(ctx, req.MAC, req.Days)
	if err != nil {
		d.logger.Error("fetching hourly distribution failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{"status": "ok", "hourly": hourly}
}

func (d *Daemon) handleGetDaily(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	daily, err := d.store.GetDailyDistribution(ctx, req.MAC, req.Days)
	if err != nil {
		d.logger.Error("fetching daily distribution failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{"status": "ok", "daily": daily}
}

func (d *Daemon) handleGetPattern(ctx context.Context, req request) map[string]any {
	if req.MAC == "" {
		return errorResponse("Missing mac")
	}

	pattern, err := patterns.Analyze(ctx, d.store, req.MAC, req.Days)
	if err != nil {
		d.logger.Error("pattern analysis failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}

	days := req.Days
	if days <= 0 {
		days = 30
	}
	hourly, err := d.store.GetHourlyDistribution(ctx, req.MAC, days)
	if err != nil {
		d.logger.Error("fetching hourly distribution failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}
	daily, err := d.store.GetDailyDistribution(ctx, req.MAC, days)
	if err != nil {
		d.logger.Error("fetching daily distribution failed", "mac", req.MAC, "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{
		"status":         "ok",
		"pattern":        pattern,
		"hourly_heatmap": patterns.HourlyHeatmap(hourly),
		"daily_heatmap":  patterns.DailyHeatmap(daily),
	}
}

func (d *Daemon) handleGetSettings(ctx context.Context) map[string]any {
	settings, err := d.store.GetSettings(ctx)
	if err != nil {
		d.logger.Error("fetching settings failed", "error", err)
		return errorResponse("Internal error")
	}

	return map[string]any{"status": "ok", "settings": settings}
}

func (d *Daemon) handleSetSettings(ctx context.Context, req request) map[string]any {
	if req.Settings == nil {
		return errorResponse("Missing settings")
	}

	if err := d.store.UpdateSettings(ctx, req.Settings); err != nil {
		d.logger.Error("updating settings failed", "error", err)
		return errorResponse("Internal error")
	}

	// The gateway caches settings; pick up the change immediately.
	if err := d.gateway.ReloadSettings(ctx); err != nil {
		d.logger.Error("reloading gateway settings failed", "error", err)
	}

	return okResponse()
}

func (d *Daemon) handleStatus() map[string]any {
	return map[string]any{
		"status":  "ok",
		"running": d.Status() == StatusRunning,
		"clients": d.ClientCount(),
	}
}

// storeError maps a repository failure to a client-safe response.
func (d *Daemon) storeError(op, mac string, err error) map[string]any {
	if errors.Is(err, device.ErrDeviceNotFound) {
		return errorResponse("Device not found")
	}
	d.logger.Error("storage operation failed", "op", op, "mac", mac, "error", err)
	return errorResponse("Internal error")
}
