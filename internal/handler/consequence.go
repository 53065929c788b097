package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/pmelhus/homequest/internal/economy"
	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/store"
	"github.com/pmelhus/homequest/internal/websocket"
)

type ConsequenceHandler struct {
	store   *store.ConsequenceStore
	economy *economy.Service
	hub     *websocket.Hub
}

func NewConsequenceHandler(s *store.ConsequenceStore, econ *economy.Service, hub *websocket.Hub) *ConsequenceHandler {
	return &ConsequenceHandler{store: s, economy: econ, hub: hub}
}

func (h *ConsequenceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type consequenceRequest struct {
	Title  string `json:"title"`
	Points int    `json:"points"`
}

func (h *ConsequenceHandler) List(w http.ResponseWriter, r *http.Request) {
	consequences, err := h.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list consequences")
		return
	}
	if consequences == nil {
		consequences = []model.Consequence{}
	}
	writeJSON(w, http.StatusOK, consequences)
}

func (h *ConsequenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req consequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}

	consequence, err := h.store.Create(req.Title, req.Points)
	if err != nil {
		log.Printf("failed to create consequence: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create consequence")
		return
	}

	h.broadcast(websocket.NewMessage("consequence", "created", consequence.ID, nil))

	writeJSON(w, http.StatusCreated, consequence)
}

func (h *ConsequenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req consequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Points <= 0 {
		writeError(w, http.StatusBadRequest, "points must be positive")
		return
	}

	consequence, err := h.store.Update(id, req.Title, req.Points)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update consequence")
		return
	}
	if consequence == nil {
		writeError(w, http.StatusNotFound, "consequence not found")
		return
	}

	h.broadcast(websocket.NewMessage("consequence", "updated", id, nil))

	writeJSON(w, http.StatusOK, consequence)
}

func (h *ConsequenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete consequence")
		return
	}

	h.broadcast(websocket.NewMessage("consequence", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

// Apply deducts a consequence's points from a user, recording who applied
// it and why. The reason defaults to the consequence title.
func (h *ConsequenceHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID    int64  `json:"user_id"`
		AppliedBy int64  `json:"applied_by"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	consequence, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get consequence")
		return
	}
	if consequence == nil {
		writeError(w, http.StatusNotFound, "consequence not found")
		return
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = consequence.Title
	}

	activity, err := h.economy.ApplyPenalty(req.UserID, consequence.Points, reason, req.AppliedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "updated", req.UserID, nil))
	h.broadcast(websocket.NewMessage("activity", "created", activity.ID, nil))

	writeJSON(w, http.StatusCreated, activity)
}

// ApplyPenalty records an ad hoc point deduction that is not backed by a
// saved consequence.
func (h *ConsequenceHandler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int64  `json:"user_id"`
		AppliedBy int64  `json:"applied_by"`
		Amount    int    `json:"amount"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	activity, err := h.economy.ApplyPenalty(req.UserID, req.Amount, req.Reason, req.AppliedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("user", "updated", req.UserID, nil))
	h.broadcast(websocket.NewMessage("activity", "created", activity.ID, nil))

	writeJSON(w, http.StatusCreated, activity)
}
