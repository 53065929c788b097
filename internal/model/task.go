package model

import "time"

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskApproved  TaskStatus = "approved"
)

// AssignMode is the assignment variant of a task: a specific member, up for
// grabs, or shared by every kid. Orthogonal to TaskStatus.
type AssignMode string

const (
	AssignMember     AssignMode = "member"
	AssignUnassigned AssignMode = "unassigned"
	AssignEveryone   AssignMode = "everyone"
)

type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

type Task struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	PointsReward  int        `json:"points_reward"`
	AssignMode    AssignMode `json:"assign_mode"`
	AssignedTo    *int64     `json:"assigned_to"`
	Status        TaskStatus `json:"status"`
	Recurrence    Recurrence `json:"recurrence"`
	RequiredCount int        `json:"required_count"`
	CurrentCount  int        `json:"current_count"`
	CreatedBy     int64      `json:"created_by"`
	CompletedBy   *int64     `json:"completed_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (t *Task) IsRecurring() bool {
	return t.Recurrence != RecurrenceNone
}
