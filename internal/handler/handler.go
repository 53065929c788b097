package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pmelhus/homequest/internal/economy"
	"github.com/pmelhus/homequest/internal/task"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return parseID(r.PathValue("id"))
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// writeEngineError maps domain errors to HTTP statuses: unknown references
// 404, permission 403, illegal transitions 409, validation 400, anything
// else 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, task.ErrUserNotFound),
		errors.Is(err, economy.ErrUserNotFound),
		errors.Is(err, economy.ErrRewardNotFound),
		errors.Is(err, economy.ErrSuggestionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, task.ErrNotParent),
		errors.Is(err, economy.ErrNotParent):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, task.ErrAlreadyAssigned),
		errors.Is(err, task.ErrNotPending),
		errors.Is(err, task.ErrNotCompleted),
		errors.Is(err, task.ErrNotEligible),
		errors.Is(err, task.ErrNoWorker),
		errors.Is(err, economy.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, task.ErrTitleRequired),
		errors.Is(err, task.ErrNegativeReward),
		errors.Is(err, task.ErrBadRequiredCount),
		errors.Is(err, task.ErrRequiredTooLow),
		errors.Is(err, economy.ErrTitleRequired),
		errors.Is(err, economy.ErrNegativeAmount),
		errors.Is(err, economy.ErrInsufficientPoints):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
