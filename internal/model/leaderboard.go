package model

import "time"

// Standing is a user's position on the current-period leaderboard.
type Standing struct {
	Rank    int    `json:"rank"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	Color   string `json:"color"`
	XP      int    `json:"xp"`
	TotalXP int    `json:"total_xp"`
	Level   int    `json:"level"`
}

// LeaderboardHistory archives the winner of a finished period.
type LeaderboardHistory struct {
	ID        int64     `json:"id"`
	Period    string    `json:"period"`
	WinnerID  int64     `json:"winner_id"`
	XPAtEnd   int       `json:"xp_at_end"`
	PeriodEnd time.Time `json:"period_end"`
}
