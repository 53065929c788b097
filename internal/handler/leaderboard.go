package handler

import (
	"log"
	"net/http"

	"github.com/pmelhus/homequest/internal/leaderboard"
	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/websocket"
)

type LeaderboardHandler struct {
	board *leaderboard.Service
	hub   *websocket.Hub
}

func NewLeaderboardHandler(board *leaderboard.Service, hub *websocket.Hub) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, hub: hub}
}

func (h *LeaderboardHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.board.Standings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute standings")
		return
	}
	if standings == nil {
		standings = []model.Standing{}
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *LeaderboardHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.board.History()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if history == nil {
		history = []model.LeaderboardHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

// ResetPeriod archives the current winner and zeroes spendable XP for
// everyone. Exposed for the weekly job and for manual resets.
func (h *LeaderboardHandler) ResetPeriod(w http.ResponseWriter, r *http.Request) {
	entry, err := h.board.ResetPeriod()
	if err != nil {
		log.Printf("failed to reset leaderboard period: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset leaderboard")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("leaderboard", "reset", 0, nil))
	}

	if entry == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no winner"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
