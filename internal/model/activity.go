package model

import (
	"encoding/json"
	"time"
)

type ActivityType string

const (
	ActivityPurchase   ActivityType = "purchase"
	ActivityPenalty    ActivityType = "penalty"
	ActivitySuggestion ActivityType = "suggestion"
)

// SuggestionStatus tracks the resolution of suggestion activities. Other
// activity types carry no status.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Activity is an append-only log entry. Details is a structured payload
// discriminated by Type (PurchaseDetails, PenaltyDetails, SuggestionDetails).
type Activity struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      ActivityType    `json:"type"`
	Details   json.RawMessage `json:"details"`
	Status    *string         `json:"status,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type PurchaseDetails struct {
	RewardID int64  `json:"reward_id"`
	Title    string `json:"title"`
	Cost     int    `json:"cost"`
}

type PenaltyDetails struct {
	Reason    string `json:"reason"`
	Amount    int    `json:"amount"`
	AppliedBy int64  `json:"applied_by"`
}

type SuggestionDetails struct {
	Title       string `json:"title"`
	Cost        int    `json:"cost"`
	Icon        string `json:"icon"`
	SuggestedBy int64  `json:"suggested_by"`
}
