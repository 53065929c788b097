package task

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/store"
)

// Domain errors surfaced to callers. Validation and illegal-transition
// failures reject before any write.
var (
	ErrNotFound         = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrNegativeReward   = errors.New("points reward must be >= 0")
	ErrBadRequiredCount = errors.New("required count must be >= 1")
	ErrRequiredTooLow   = errors.New("required count cannot drop below recorded progress")
	ErrAlreadyAssigned  = errors.New("task is not up for grabs")
	ErrNotPending       = errors.New("task is not pending")
	ErrNotCompleted     = errors.New("task is not awaiting approval")
	ErrNotEligible      = errors.New("task is assigned to someone else")
	ErrNotParent        = errors.New("only a parent may do this")
	ErrNoWorker         = errors.New("task has no worker to credit")
)

// Engine runs the task lifecycle: create, claim, progress, approve, edit,
// delete, and the nightly recurring sweep. Every multi-write operation runs
// in one transaction; notification rows are written inside it and announced
// after commit.
type Engine struct {
	db       *sql.DB
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewEngine(db *sql.DB, notifier *notify.Notifier, logger *slog.Logger) *Engine {
	return &Engine{db: db, notifier: notifier, logger: logger}
}

type CreateParams struct {
	Title         string
	PointsReward  int
	Recurrence    model.Recurrence
	RequiredCount int
	CreatedBy     int64
	Assignees     []int64
}

func (p *CreateParams) validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return ErrTitleRequired
	}
	if p.PointsReward < 0 {
		return ErrNegativeReward
	}
	if p.RequiredCount == 0 {
		p.RequiredCount = 1
	}
	if p.RequiredCount < 1 {
		return ErrBadRequiredCount
	}
	if p.Recurrence == "" {
		p.Recurrence = model.RecurrenceNone
	}
	return nil
}

// Create makes one task row per selected assignee; with no assignees a
// single up-for-grabs row, and with the entire kid roster selected a single
// shared everyone row. Each concrete assignee gets a task_assigned
// notification (the shared row fans out to every kid).
func (e *Engine) Create(p CreateParams) ([]model.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	users := store.NewUserStore(tx)
	tasks := store.NewTaskStore(tx)
	notifs := store.NewNotificationStore(tx)

	creator, err := users.GetByID(p.CreatedBy)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrUserNotFound
	}

	kids, err := users.ListByRole(model.RoleKid)
	if err != nil {
		return nil, err
	}
	kidSet := make(map[int64]bool, len(kids))
	for _, k := range kids {
		kidSet[k.ID] = true
	}
	for _, id := range p.Assignees {
		if !kidSet[id] {
			return nil, ErrUserNotFound
		}
	}

	var created []model.Task
	var pending []model.Notification

	notifyAssignee := func(userID, taskID int64) error {
		n, err := notifs.Create(userID, model.NotifTaskAssigned, "New task",
			fmt.Sprintf("%s (%d pts)", p.Title, p.PointsReward), &taskID)
		if err != nil {
			return err
		}
		pending = append(pending, *n)
		return nil
	}

	switch {
	case len(p.Assignees) == 0:
		t, err := tasks.Create(p.Title, p.PointsReward, model.AssignUnassigned, nil, p.Recurrence, p.RequiredCount, p.CreatedBy)
		if err != nil {
			return nil, err
		}
		created = append(created, *t)

	case coversRoster(p.Assignees, kids):
		t, err := tasks.Create(p.Title, p.PointsReward, model.AssignEveryone, nil, p.Recurrence, p.RequiredCount, p.CreatedBy)
		if err != nil {
			return nil, err
		}
		created = append(created, *t)
		for _, k := range kids {
			if err := notifyAssignee(k.ID, t.ID); err != nil {
				return nil, err
			}
		}

	default:
		for _, assignee := range p.Assignees {
			id := assignee
			t, err := tasks.Create(p.Title, p.PointsReward, model.AssignMember, &id, p.Recurrence, p.RequiredCount, p.CreatedBy)
			if err != nil {
				return nil, err
			}
			created = append(created, *t)
			if err := notifyAssignee(id, t.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.notifier.AnnounceAll(pending)
	e.logger.Info("tasks created", "title", p.Title, "count", len(created), "created_by", p.CreatedBy)
	return created, nil
}

// coversRoster reports whether assignees include every kid on the roster.
func coversRoster(assignees []int64, kids []model.User) bool {
	if len(kids) == 0 || len(assignees) < len(kids) {
		return false
	}
	selected := make(map[int64]bool, len(assignees))
	for _, id := range assignees {
		selected[id] = true
	}
	for _, k := range kids {
		if !selected[k.ID] {
			return false
		}
	}
	return true
}

// Claim converts an up-for-grabs task into one owned by the acting user.
func (e *Engine) Claim(taskID, actorID int64) (*model.Task, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	tasks := store.NewTaskStore(tx)
	users := store.NewUserStore(tx)

	t, err := tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.AssignMode != model.AssignUnassigned {
		return nil, ErrAlreadyAssigned
	}

	actor, err := users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	if err := tasks.Assign(taskID, model.AssignMember, &actorID); err != nil {
		return nil, err
	}
	t, err = tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return t, nil
}

// RecordProgress increments a pending task's completion counter for an
// eligible actor. Progress on an up-for-grabs task claims it for the actor
// first, so an unassigned task is never anything but pending. Reaching the
// required count completes the task, stamps the completer, and notifies
// every parent.
func (e *Engine) RecordProgress(taskID, actorID int64) (*model.Task, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	tasks := store.NewTaskStore(tx)
	users := store.NewUserStore(tx)
	notifs := store.NewNotificationStore(tx)

	t, err := tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Status != model.TaskPending {
		return nil, ErrNotPending
	}

	actor, err := users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	if t.AssignMode == model.AssignUnassigned {
		if err := tasks.Assign(taskID, model.AssignMember, &actorID); err != nil {
			return nil, err
		}
		t.AssignMode = model.AssignMember
		t.AssignedTo = &actorID
	}
	if t.AssignMode == model.AssignMember && (t.AssignedTo == nil || *t.AssignedTo != actorID) {
		return nil, ErrNotEligible
	}

	var pending []model.Notification
	newCount := t.CurrentCount + 1

	if newCount >= t.RequiredCount {
		if err := tasks.MarkCompleted(taskID, t.RequiredCount, actorID); err != nil {
			return nil, err
		}
		parents, err := users.ListByRole(model.RoleParent)
		if err != nil {
			return nil, err
		}
		for _, parent := range parents {
			n, err := notifs.Create(parent.ID, model.NotifTaskCompleted, "Task finished",
				fmt.Sprintf("%s finished %s", actor.Name, t.Title), &taskID)
			if err != nil {
				return nil, err
			}
			pending = append(pending, *n)
		}
	} else {
		if err := tasks.SetProgress(taskID, newCount); err != nil {
			return nil, err
		}
	}

	t, err = tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.notifier.AnnounceAll(pending)
	return t, nil
}

// Approve credits the worker and advances the task: recurring tasks cycle
// back to pending, one-off tasks become terminal. Parent-only. Returns the
// task and the credited worker's ID (the task row may no longer carry it
// once a recurring cycle resets).
func (e *Engine) Approve(taskID, approverID int64) (*model.Task, int64, error) {
	tx, err := e.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	tasks := store.NewTaskStore(tx)
	users := store.NewUserStore(tx)
	notifs := store.NewNotificationStore(tx)

	approver, err := users.GetByID(approverID)
	if err != nil {
		return nil, 0, err
	}
	if approver == nil {
		return nil, 0, ErrUserNotFound
	}
	if approver.Role != model.RoleParent {
		return nil, 0, ErrNotParent
	}

	t, err := tasks.GetByID(taskID)
	if err != nil {
		return nil, 0, err
	}
	if t == nil {
		return nil, 0, ErrNotFound
	}
	if t.Status != model.TaskCompleted {
		return nil, 0, ErrNotCompleted
	}

	workerID, err := resolveWorker(t)
	if err != nil {
		return nil, 0, err
	}
	worker, err := users.GetByID(workerID)
	if err != nil {
		return nil, 0, err
	}
	if worker == nil {
		return nil, 0, ErrUserNotFound
	}

	if err := users.Credit(workerID, t.PointsReward); err != nil {
		return nil, 0, err
	}

	if t.IsRecurring() {
		if err := tasks.ResetCycle(taskID); err != nil {
			return nil, 0, err
		}
	} else {
		if err := tasks.MarkApproved(taskID); err != nil {
			return nil, 0, err
		}
	}

	n, err := notifs.Create(workerID, model.NotifTaskApproved, "Task approved",
		fmt.Sprintf("%s approved — you earned %d points!", t.Title, t.PointsReward), &taskID)
	if err != nil {
		return nil, 0, err
	}

	t, err = tasks.GetByID(taskID)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit: %w", err)
	}

	e.notifier.Announce(n)
	e.logger.Info("task approved", "task_id", taskID, "worker_id", workerID, "points", t.PointsReward)
	return t, workerID, nil
}

// resolveWorker picks who gets credited: the recorded completer, falling
// back to a member-mode assignee.
func resolveWorker(t *model.Task) (int64, error) {
	if t.CompletedBy != nil {
		return *t.CompletedBy, nil
	}
	if t.AssignMode == model.AssignMember && t.AssignedTo != nil {
		return *t.AssignedTo, nil
	}
	return 0, ErrNoWorker
}

type EditParams struct {
	Title         string
	PointsReward  int
	Recurrence    model.Recurrence
	RequiredCount int
}

// Edit corrects a task's definition at any status. It never transitions
// status and rejects a required count below progress already recorded.
func (e *Engine) Edit(taskID int64, p EditParams) (*model.Task, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, ErrTitleRequired
	}
	if p.PointsReward < 0 {
		return nil, ErrNegativeReward
	}
	if p.RequiredCount < 1 {
		return nil, ErrBadRequiredCount
	}
	if p.Recurrence == "" {
		p.Recurrence = model.RecurrenceNone
	}

	tasks := store.NewTaskStore(e.db)
	t, err := tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if p.RequiredCount < t.CurrentCount {
		return nil, ErrRequiredTooLow
	}

	return tasks.UpdateFields(taskID, p.Title, p.PointsReward, p.Recurrence, p.RequiredCount)
}

// Delete removes a task unconditionally.
func (e *Engine) Delete(taskID int64) error {
	tasks := store.NewTaskStore(e.db)
	t, err := tasks.GetByID(taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrNotFound
	}
	return tasks.Delete(taskID)
}

// ResetRecurring is the nightly sweep: every recurring task is forced back
// to the start of its cycle regardless of status. Safe to re-run.
func (e *Engine) ResetRecurring() (int64, error) {
	n, err := store.NewTaskStore(e.db).ResetAllRecurring()
	if err != nil {
		return 0, err
	}
	e.logger.Info("recurring tasks reset", "count", n)
	return n, nil
}
