package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pmelhus/homequest/internal/model"
)

type ActivityStore struct {
	db DBTX
}

func NewActivityStore(db DBTX) *ActivityStore {
	return &ActivityStore{db: db}
}

const activityCols = `id, user_id, type, details, status, created_at`

func scanActivity(scanner interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	var details string
	var status sql.NullString

	err := scanner.Scan(&a.ID, &a.UserID, &a.Type, &details, &status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.Details = json.RawMessage(details)
	if status.Valid {
		a.Status = &status.String
	}
	return &a, nil
}

// Append inserts a log entry. details must be a JSON-marshalable payload;
// status is only meaningful for suggestion entries and may be empty.
func (s *ActivityStore) Append(userID int64, typ model.ActivityType, details any, status model.SuggestionStatus) (*model.Activity, error) {
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal activity details: %w", err)
	}

	var st sql.NullString
	if status != "" {
		st = sql.NullString{String: string(status), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO activities (user_id, type, details, status) VALUES (?, ?, ?, ?)`,
		userID, typ, string(data), st,
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ActivityStore) GetByID(id int64) (*model.Activity, error) {
	row := s.db.QueryRow(`SELECT `+activityCols+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func (s *ActivityStore) List() ([]model.Activity, error) {
	rows, err := s.db.Query(`SELECT ` + activityCols + ` FROM activities ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (s *ActivityStore) ListByUser(userID int64) ([]model.Activity, error) {
	rows, err := s.db.Query(
		`SELECT `+activityCols+` FROM activities WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities by user: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

// ListSuggestions returns suggestion entries, optionally filtered by status.
func (s *ActivityStore) ListSuggestions(status model.SuggestionStatus) ([]model.Activity, error) {
	query := `SELECT ` + activityCols + ` FROM activities WHERE type = 'suggestion'`
	args := []any{}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()
	return collectActivities(rows)
}

func collectActivities(rows *sql.Rows) ([]model.Activity, error) {
	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *ActivityStore) SetSuggestionStatus(id int64, status model.SuggestionStatus) error {
	_, err := s.db.Exec(
		`UPDATE activities SET status = ? WHERE id = ? AND type = 'suggestion'`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("set suggestion status: %w", err)
	}
	return nil
}
