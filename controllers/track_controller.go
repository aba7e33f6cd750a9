package controllers

import (
	"fmt"
	"net/http"

	"raksha_server/models"
	"raksha_server/services"
)

// TrackController handles HTTP requests for sessions, coordinate storage, and
// companion lookups.
type TrackController struct {
	Sessions  *services.SessionService
	Locations *services.LocationService
}

// NewTrackController creates a new TrackController instance.
func NewTrackController(sessions *services.SessionService, locations *services.LocationService) *TrackController {
	return &TrackController{Sessions: sessions, Locations: locations}
}

type createSessionRequest struct {
	User string `json:"user"`
}

// CreateSession handles POST /create-session.
func (tc *TrackController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	session, err := tc.Sessions.CreateSession(r.Context(), req.User)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":    true,
		"code":      session.Code,
		"sessionId": session.Code,
		"message":   fmt.Sprintf("Session created with code %s", session.Code),
	})
}

type joinSessionRequest struct {
	User        string `json:"user"`
	Code        string `json:"code"`
	Session     string `json:"session"`
	SessionCode string `json:"sessionCode"`
}

func (req joinSessionRequest) sessionCode() string {
	for _, c := range []string{req.Code, req.Session, req.SessionCode} {
		if c != "" {
			return c
		}
	}
	return ""
}

// JoinSession handles POST /join-session.
func (tc *TrackController) JoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	code := req.sessionCode()
	if _, err := tc.Sessions.JoinSession(r.Context(), req.User, code); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": fmt.Sprintf("You have successfully joined %s", code),
		"code":    code,
	})
}

type storeCoordinatesRequest struct {
	User      string   `json:"user"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
	Session   string   `json:"session"`
}

// StoreCoordinates handles POST /store-coordinates.
func (tc *TrackController) StoreCoordinates(w http.ResponseWriter, r *http.Request) {
	var req storeCoordinatesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.User == "" || req.Latitude == nil || req.Longitude == nil {
		respondError(w, fmt.Errorf("user, latitude and longitude are required: %w", models.ErrValidation))
		return
	}
	id, err := tc.Locations.SaveLocation(r.Context(), req.User, *req.Latitude, *req.Longitude, req.Timestamp, req.Session)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": fmt.Sprintf("%s : %v,%v", req.User, *req.Latitude, *req.Longitude),
		"id":      id,
	})
}

type findCompanionRequest struct {
	User        string   `json:"user"`
	Username    string   `json:"username"`
	Session     string   `json:"session"`
	SessionCode string   `json:"sessionCode"`
	Code        string   `json:"code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// FindCompanion handles POST /find-companion.
func (tc *TrackController) FindCompanion(w http.ResponseWriter, r *http.Request) {
	var req findCompanionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	requester := req.User
	if requester == "" {
		requester = req.Username
	}
	code := req.Session
	if code == "" {
		code = req.SessionCode
	}
	if code == "" {
		code = req.Code
	}
	if requester == "" || code == "" {
		respondError(w, fmt.Errorf("user and session code are required: %w", models.ErrValidation))
		return
	}

	var point *models.GeoPoint
	if req.Latitude != nil && req.Longitude != nil {
		point = &models.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	companions, err := tc.Locations.FindCompanions(r.Context(), requester, code, point)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     true,
		"message":    "companions fetched",
		"companions": companions,
	})
}
