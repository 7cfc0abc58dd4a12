package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/bluehood-core/internal/device"
	"github.com/nerrad567/bluehood-core/internal/patterns"
)

// defaultHistoryDays is the query window when the days parameter is absent.
const defaultHistoryDays = 30

// handleListDevices returns all known devices.
//
// GET /api/v1/devices?include_ignored=true
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	includeIgnored := true
	if v := r.URL.Query().Get("include_ignored"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "include_ignored must be a boolean")
			return
		}
		includeIgnored = parsed
	}

	devices, err := s.store.GetAllDevices(r.Context(), includeIgnored)
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns one device.
//
// GET /api/v1/devices/{mac}
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")

	dev, err := s.store.GetByMAC(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("fetching device failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleGetSightings returns a device's recent sightings.
//
// GET /api/v1/devices/{mac}/sightings?days=30
func (s *Server) handleGetSightings(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	sightings, err := s.store.GetSightings(r.Context(), mac, days)
	if err != nil {
		s.logger.Error("fetching sightings failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch sightings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sightings": sightings,
		"count":     len(sightings),
	})
}

// handleGetHourly returns a device's hourly sighting distribution.
//
// GET /api/v1/devices/{mac}/hourly?days=30
func (s *Server) handleGetHourly(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	hourly, err := s.store.GetHourlyDistribution(r.Context(), mac, days)
	if err != nil {
		s.logger.Error("fetching hourly distribution failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch hourly distribution")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hourly": hourly})
}

// handleGetDaily returns a device's day-of-week sighting distribution.
//
// GET /api/v1/devices/{mac}/daily?days=30
func (s *Server) handleGetDaily(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	daily, err := s.store.GetDailyDistribution(r.Context(), mac, days)
	if err != nil {
		s.logger.Error("fetching daily distribution failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch daily distribution")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"daily": daily})
}

// handleGetPattern returns a device's presence pattern summary with
// ASCII heatmaps.
//
// GET /api/v1/devices/{mac}/pattern?days=30
func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	days, ok := parseDays(w, r)
	if !ok {
		return
	}

	pattern, err := patterns.Analyze(r.Context(), s.store, mac, days)
	if err != nil {
		s.logger.Error("pattern analysis failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to analyze pattern")
		return
	}

	hourly, err := s.store.GetHourlyDistribution(r.Context(), mac, days)
	if err != nil {
		s.logger.Error("fetching hourly distribution failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch hourly distribution")
		return
	}
	daily, err := s.store.GetDailyDistribution(r.Context(), mac, days)
	if err != nil {
		s.logger.Error("fetching daily distribution failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to fetch daily distribution")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pattern":        pattern,
		"hourly_heatmap": patterns.HourlyHeatmap(hourly),
		"daily_heatmap":  patterns.DailyHeatmap(daily),
	})
}

// parseDays reads the days query parameter, defaulting to 30. A false
// return means an error response was already written.
func parseDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("days")
	if v == "" {
		return defaultHistoryDays, true
	}

	days, err := strconv.Atoi(v)
	if err != nil || days < 1 {
		writeBadRequest(w, "days must be a positive integer")
		return 0, false
	}
	return days, true
}
