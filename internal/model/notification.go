package model

import "time"

type NotificationType string

const (
	NotifTaskAssigned       NotificationType = "task_assigned"
	NotifTaskCompleted      NotificationType = "task_completed"
	NotifTaskApproved       NotificationType = "task_approved"
	NotifConsequenceApplied NotificationType = "consequence_applied"
	NotifLeaderboardChange  NotificationType = "leaderboard_change"
)

// Notification is a user-facing alert created as a side effect of lifecycle
// and economy transitions. RelatedID points at the triggering entity (task,
// activity, or history row) when applicable.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	RelatedID *int64           `json:"related_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
