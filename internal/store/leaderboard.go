package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pmelhus/homequest/internal/model"
)

type LeaderboardStore struct {
	db DBTX
}

func NewLeaderboardStore(db DBTX) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

const historyCols = `id, period, winner_id, xp_at_end, period_end`

// Archive appends a finished-period winner row.
func (s *LeaderboardStore) Archive(period string, winnerID int64, xpAtEnd int, periodEnd time.Time) (*model.LeaderboardHistory, error) {
	result, err := s.db.Exec(
		`INSERT INTO leaderboard_history (period, winner_id, xp_at_end, period_end) VALUES (?, ?, ?, ?)`,
		period, winnerID, xpAtEnd, periodEnd.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert leaderboard history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+historyCols+` FROM leaderboard_history WHERE id = ?`, id)
	var h model.LeaderboardHistory
	if err := row.Scan(&h.ID, &h.Period, &h.WinnerID, &h.XPAtEnd, &h.PeriodEnd); err != nil {
		return nil, fmt.Errorf("get leaderboard history: %w", err)
	}
	return &h, nil
}

// History returns archived periods, newest first.
func (s *LeaderboardStore) History() ([]model.LeaderboardHistory, error) {
	rows, err := s.db.Query(`SELECT ` + historyCols + ` FROM leaderboard_history ORDER BY period_end DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard history: %w", err)
	}
	defer rows.Close()

	var history []model.LeaderboardHistory
	for rows.Next() {
		var h model.LeaderboardHistory
		if err := rows.Scan(&h.ID, &h.Period, &h.WinnerID, &h.XPAtEnd, &h.PeriodEnd); err != nil {
			return nil, fmt.Errorf("scan leaderboard history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// Latest returns the most recent archive row for a period tag, or nil.
func (s *LeaderboardStore) Latest(period string) (*model.LeaderboardHistory, error) {
	row := s.db.QueryRow(
		`SELECT `+historyCols+` FROM leaderboard_history WHERE period = ? ORDER BY period_end DESC, id DESC LIMIT 1`,
		period,
	)
	var h model.LeaderboardHistory
	err := row.Scan(&h.ID, &h.Period, &h.WinnerID, &h.XPAtEnd, &h.PeriodEnd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest leaderboard history: %w", err)
	}
	return &h, nil
}
