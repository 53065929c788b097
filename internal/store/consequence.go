package store

import (
	"database/sql"
	"fmt"

	"github.com/pmelhus/homequest/internal/model"
)

type ConsequenceStore struct {
	db DBTX
}

func NewConsequenceStore(db DBTX) *ConsequenceStore {
	return &ConsequenceStore{db: db}
}

const consequenceCols = `id, title, points, created_at`

func scanConsequence(scanner interface{ Scan(...any) error }) (*model.Consequence, error) {
	var c model.Consequence
	err := scanner.Scan(&c.ID, &c.Title, &c.Points, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConsequenceStore) Create(title string, points int) (*model.Consequence, error) {
	result, err := s.db.Exec(
		`INSERT INTO consequences (title, points) VALUES (?, ?)`,
		title, points,
	)
	if err != nil {
		return nil, fmt.Errorf("insert consequence: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ConsequenceStore) GetByID(id int64) (*model.Consequence, error) {
	row := s.db.QueryRow(`SELECT `+consequenceCols+` FROM consequences WHERE id = ?`, id)
	c, err := scanConsequence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consequence: %w", err)
	}
	return c, nil
}

func (s *ConsequenceStore) List() ([]model.Consequence, error) {
	rows, err := s.db.Query(`SELECT ` + consequenceCols + ` FROM consequences ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list consequences: %w", err)
	}
	defer rows.Close()

	var consequences []model.Consequence
	for rows.Next() {
		c, err := scanConsequence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consequence: %w", err)
		}
		consequences = append(consequences, *c)
	}
	return consequences, rows.Err()
}

func (s *ConsequenceStore) Update(id int64, title string, points int) (*model.Consequence, error) {
	_, err := s.db.Exec(
		`UPDATE consequences SET title = ?, points = ? WHERE id = ?`,
		title, points, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update consequence: %w", err)
	}
	return s.GetByID(id)
}

func (s *ConsequenceStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM consequences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete consequence: %w", err)
	}
	return nil
}
