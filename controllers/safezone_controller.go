package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"raksha_server/models"
	"raksha_server/services"

	"github.com/gorilla/mux"
)

// SafeZoneController handles HTTP requests for geofence definition and breach
// reporting.
type SafeZoneController struct {
	Zones *services.SafeZoneService
}

// NewSafeZoneController creates a new SafeZoneController instance.
func NewSafeZoneController(zones *services.SafeZoneService) *SafeZoneController {
	return &SafeZoneController{Zones: zones}
}

type setZoneRequest struct {
	User         string   `json:"user"`
	Session      string   `json:"session"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusMeters *float64 `json:"radiusMeters"`
	Actor        string   `json:"actor"`
}

// CreateOrUpdate handles POST /safe-zone.
func (sc *SafeZoneController) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	var req setZoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.User == "" || req.Latitude == nil || req.Longitude == nil || req.RadiusMeters == nil {
		respondError(w, fmt.Errorf("user, latitude, longitude and radiusMeters are required: %w", models.ErrValidation))
		return
	}
	zone, err := sc.Zones.SetZone(r.Context(), req.User, req.Session, *req.Latitude, *req.Longitude, *req.RadiusMeters, req.Actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": "safe zone saved",
		"zone":    zone,
	})
}

// Get handles GET /safe-zone/{session} and GET /safe-zone?user=.
func (sc *SafeZoneController) Get(w http.ResponseWriter, r *http.Request) {
	session := mux.Vars(r)["session"]
	user := r.URL.Query().Get("user")

	zone, err := sc.Zones.GetZone(r.Context(), session, user)
	if err != nil {
		respondError(w, err)
		return
	}
	if zone == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":  true,
			"message": "no safe zone",
			"zone":    nil,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": true,
		"zone":   zone,
	})
}

type breachRequest struct {
	User      string   `json:"user"`
	Session   string   `json:"session"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
	Type      string   `json:"type"`
}

// Breach handles POST /safe-zone/breach.
func (sc *SafeZoneController) Breach(w http.ResponseWriter, r *http.Request) {
	var req breachRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	outcome, err := sc.Zones.ReportBreach(r.Context(), req.User, req.Session, req.Latitude, req.Longitude, req.Timestamp, req.Type)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": "breach processed",
		"payload": outcome.Payload,
		"outcome": outcome,
	})
}

// ListBreaches handles GET /safe-zone/breaches.
func (sc *SafeZoneController) ListBreaches(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	page, _ := strconv.Atoi(query.Get("page"))

	breaches, err := sc.Zones.ListBreaches(r.Context(), query.Get("session"), query.Get("user"), limit, page)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   true,
		"breaches": breaches,
		"count":    len(breaches),
	})
}
