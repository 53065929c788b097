package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pmelhus/homequest/internal/economy"
	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/store"
	"github.com/pmelhus/homequest/internal/websocket"
)

type ActivityHandler struct {
	store   *store.ActivityStore
	economy *economy.Service
	hub     *websocket.Hub
}

func NewActivityHandler(s *store.ActivityStore, econ *economy.Service, hub *websocket.Hub) *ActivityHandler {
	return &ActivityHandler{store: s, economy: econ, hub: hub}
}

func (h *ActivityHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		activities []model.Activity
		err        error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		id, perr := parseID(userID)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		activities, err = h.store.ListByUser(id)
	} else {
		activities, err = h.store.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	status := model.SuggestionStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = model.SuggestionPending
	}

	suggestions, err := h.store.ListSuggestions(status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *ActivityHandler) SuggestReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"user_id"`
		Title  string `json:"title"`
		Cost   int    `json:"cost"`
		Icon   string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	activity, err := h.economy.SuggestReward(req.UserID, req.Title, req.Cost, req.Icon)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("activity", "created", activity.ID, nil))

	writeJSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) ApproveSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	reward, err := h.economy.ApproveSuggestion(id, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("activity", "updated", id, nil))
	h.broadcast(websocket.NewMessage("reward", "created", reward.ID, nil))

	writeJSON(w, http.StatusCreated, reward)
}

func (h *ActivityHandler) RejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.economy.RejectSuggestion(id, req.UserID); err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("activity", "updated", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
