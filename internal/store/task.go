package store

import (
	"database/sql"
	"fmt"

	"github.com/pmelhus/homequest/internal/model"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, title, points_reward, assign_mode, assigned_to, status, recurrence, required_count, current_count, created_by, completed_by, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assignedTo sql.NullInt64
	var completedBy sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.Title, &t.PointsReward, &t.AssignMode, &assignedTo,
		&t.Status, &t.Recurrence, &t.RequiredCount, &t.CurrentCount,
		&t.CreatedBy, &completedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.Int64
	}
	return &t, nil
}

func (s *TaskStore) Create(title string, pointsReward int, mode model.AssignMode, assignedTo *int64, recurrence model.Recurrence, requiredCount int, createdBy int64) (*model.Task, error) {
	var aTo sql.NullInt64
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (title, points_reward, assign_mode, assigned_to, recurrence, required_count, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, pointsReward, mode, aTo, recurrence, requiredCount, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListForUser returns tasks visible to a member: their own plus unassigned
// and everyone-mode rows.
func (s *TaskStore) ListForUser(userID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE assigned_to = ? OR assign_mode IN ('unassigned', 'everyone')
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks for user: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) ListByStatus(status model.TaskStatus) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE status = ? ORDER BY created_at DESC, id DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by status: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateFields edits a task's definition without touching its lifecycle
// columns.
func (s *TaskStore) UpdateFields(id int64, title string, pointsReward int, recurrence model.Recurrence, requiredCount int) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, points_reward = ?, recurrence = ?, required_count = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, pointsReward, recurrence, requiredCount, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// Assign rewrites the assignment variant. Used by Claim to convert an
// unassigned task into a member-owned one.
func (s *TaskStore) Assign(id int64, mode model.AssignMode, assignedTo *int64) error {
	var aTo sql.NullInt64
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET assign_mode = ?, assigned_to = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		mode, aTo, id,
	)
	if err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

func (s *TaskStore) SetProgress(id int64, currentCount int) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET current_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		currentCount, id,
	)
	if err != nil {
		return fmt.Errorf("set task progress: %w", err)
	}
	return nil
}

func (s *TaskStore) MarkCompleted(id int64, currentCount int, completedBy int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'completed', current_count = ?, completed_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		currentCount, completedBy, id,
	)
	if err != nil {
		return fmt.Errorf("mark task completed: %w", err)
	}
	return nil
}

func (s *TaskStore) MarkApproved(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'approved', updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark task approved: %w", err)
	}
	return nil
}

// ResetCycle returns a task to the start of its cycle: pending, zero
// progress, no completer.
func (s *TaskStore) ResetCycle(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = 'pending', current_count = 0, completed_by = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("reset task cycle: %w", err)
	}
	return nil
}

// ResetAllRecurring sweeps every recurring task back to the start of its
// cycle regardless of current status. Returns the number of rows touched.
func (s *TaskStore) ResetAllRecurring() (int64, error) {
	result, err := s.db.Exec(
		`UPDATE tasks SET status = 'pending', current_count = 0, completed_by = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE recurrence != 'none'`,
	)
	if err != nil {
		return 0, fmt.Errorf("reset recurring tasks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
