package model

import "time"

// Reward is a store item purchasable with points.
type Reward struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Cost      int       `json:"cost"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// Consequence is a predefined penalty template: applying it deducts Points
// from a target user.
type Consequence struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
