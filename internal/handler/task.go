package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/store"
	"github.com/pmelhus/homequest/internal/task"
	"github.com/pmelhus/homequest/internal/websocket"
)

type TaskHandler struct {
	engine *task.Engine
	store  *store.TaskStore
	hub    *websocket.Hub
}

func NewTaskHandler(engine *task.Engine, s *store.TaskStore, hub *websocket.Hub) *TaskHandler {
	return &TaskHandler{engine: engine, store: s, hub: hub}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type taskRequest struct {
	Title         string           `json:"title"`
	PointsReward  int              `json:"points_reward"`
	Recurrence    model.Recurrence `json:"recurrence"`
	RequiredCount int              `json:"required_count"`
	CreatedBy     int64            `json:"created_by"`
	Assignees     []int64          `json:"assignees"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []model.Task
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		tasks, err = h.store.ListByStatus(model.TaskStatus(status))
	} else if userID := r.URL.Query().Get("user_id"); userID != "" {
		id, perr := parseID(userID)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		tasks, err = h.store.ListForUser(id)
	} else {
		tasks, err = h.store.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	tasks, err := h.engine.Create(task.CreateParams{
		Title:         req.Title,
		PointsReward:  req.PointsReward,
		Recurrence:    req.Recurrence,
		RequiredCount: req.RequiredCount,
		CreatedBy:     req.CreatedBy,
		Assignees:     req.Assignees,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	for _, t := range tasks {
		h.broadcast(websocket.NewMessage("task", "created", t.ID, nil))
	}

	writeJSON(w, http.StatusCreated, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, err := h.engine.Edit(id, task.EditParams{
		Title:         req.Title,
		PointsReward:  req.PointsReward,
		Recurrence:    req.Recurrence,
		RequiredCount: req.RequiredCount,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))

	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.engine.Delete(id); err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

type actorRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *TaskHandler) Claim(w http.ResponseWriter, r *http.Request) {
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

	t, err := h.engine.Claim(id, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))

	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Progress(w http.ResponseWriter, r *http.Request) {
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

	t, err := h.engine.RecordProgress(id, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))

	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
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

	t, workerID, err := h.engine.Approve(id, req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))
	h.broadcast(websocket.NewMessage("user", "updated", workerID, nil))

	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) ResetRecurring(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.ResetRecurring()
	if err != nil {
		log.Printf("failed to reset recurring tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset recurring tasks")
		return
	}

	h.broadcast(websocket.NewMessage("task", "reset", 0, map[string]any{"count": n}))

	writeJSON(w, http.StatusOK, map[string]any{"reset": n})
}
