package model

import "time"

type Role string

const (
	RoleParent Role = "parent"
	RoleKid    Role = "kid"
)

// User is a household member. XP is the rolling weekly competition metric,
// Points the spendable balance, TotalXP lifetime earnings and XPSpent
// lifetime spend. Points may go negative through penalties.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Avatar      string    `json:"avatar"`
	Color       string    `json:"color"`
	XP          int       `json:"xp"`
	Points      int       `json:"points"`
	TotalXP     int       `json:"total_xp"`
	XPSpent     int       `json:"xp_spent"`
	Level       int       `json:"level"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LevelForTotalXP derives a user's level from lifetime XP (100 XP per level).
func LevelForTotalXP(totalXP int) int {
	if totalXP < 0 {
		return 1
	}
	return 1 + totalXP/100
}
