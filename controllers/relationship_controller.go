package controllers

import (
	"net/http"

	"raksha_server/models"
	"raksha_server/services"

	"github.com/gorilla/mux"
)

// RelationshipController handles HTTP requests for the permission graph.
type RelationshipController struct {
	Relationships *services.RelationshipService
}

// NewRelationshipController creates a new RelationshipController instance.
func NewRelationshipController(relationships *services.RelationshipService) *RelationshipController {
	return &RelationshipController{Relationships: relationships}
}

type requestRelationshipRequest struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Type   string        `json:"type"`
	Grants models.Grants `json:"grants"`
}

// Request handles POST /relationship/request.
func (rc *RelationshipController) Request(w http.ResponseWriter, r *http.Request) {
	var req requestRelationshipRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	rel, err := rc.Relationships.Request(r.Context(), req.From, req.To, req.Type, req.Grants)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  true,
		"message": "Relationship request created",
		"relId":   rel.ID,
		"rel":     rel,
	})
}

type respondRelationshipRequest struct {
	RelID  string        `json:"relId"`
	To     string        `json:"to"`
	Action string        `json:"action"`
	Grants models.Grants `json:"grants"`
}

// Respond handles POST /relationship/respond.
func (rc *RelationshipController) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRelationshipRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	rel, err := rc.Relationships.Respond(r.Context(), req.RelID, req.To, req.Action, req.Grants)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": rel.Status,
		"rel":     rel,
	})
}

// List handles GET /relationship/list?user=.
func (rc *RelationshipController) List(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	rels, err := rc.Relationships.ListForUser(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"relationships": rels,
	})
}

// ForUser handles GET /relationship/for-user?user=.
func (rc *RelationshipController) ForUser(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	rels, err := rc.Relationships.AcceptedFor(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        true,
		"relationships": rels,
	})
}

// Delete handles DELETE /relationship/{id}.
func (rc *RelationshipController) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		var body struct {
			Actor string `json:"actor"`
		}
		if err := decodeBody(r, &body); err == nil {
			actor = body.Actor
		}
	}
	if err := rc.Relationships.Delete(r.Context(), id, actor); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  true,
		"message": "relationship removed",
	})
}
