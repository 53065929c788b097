package store

import (
	"database/sql"
	"fmt"

	"github.com/pmelhus/homequest/internal/model"
)

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, name, role, avatar, color, xp, points, total_xp, xp_spent, level, password IS NOT NULL, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.Name, &u.Role, &u.Avatar, &u.Color,
		&u.XP, &u.Points, &u.TotalXP, &u.XPSpent, &u.Level,
		&u.HasPassword, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(name string, role model.Role, avatar, color string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, role, avatar, color) VALUES (?, ?, ?, ?)`,
		name, role, avatar, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by name, matching the source's roster order.
func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) ListByRole(role model.Role) ([]model.User, error) {
	rows, err := s.db.Query(`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY name ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, name, avatar, color string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, avatar = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, avatar, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return s.GetByID(id)
}

// Credit adds delta to points, xp, and total_xp in one write, recomputing the
// stored level from the new lifetime total.
func (s *UserStore) Credit(id int64, delta int) error {
	_, err := s.db.Exec(
		`UPDATE users
		 SET points = points + ?, xp = xp + ?, total_xp = total_xp + ?,
		     level = 1 + (total_xp + ?) / 100,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		delta, delta, delta, delta, id,
	)
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}
	return nil
}

// Spend debits points and records the spend against xp_spent. The caller
// checks affordability; this write does not.
func (s *UserStore) Spend(id int64, amount int) error {
	_, err := s.db.Exec(
		`UPDATE users SET points = points - ?, xp_spent = xp_spent + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, amount, id,
	)
	if err != nil {
		return fmt.Errorf("spend points: %w", err)
	}
	return nil
}

// Deduct subtracts points without touching XP. Balances may go negative.
func (s *UserStore) Deduct(id int64, amount int) error {
	_, err := s.db.Exec(
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("deduct points: %w", err)
	}
	return nil
}

// ResetAllXP zeroes every user's period XP in a single write. Lifetime
// totals and spendable points are untouched.
func (s *UserStore) ResetAllXP() error {
	_, err := s.db.Exec(`UPDATE users SET xp = 0, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("reset xp: %w", err)
	}
	return nil
}

func (s *UserStore) SetPassword(id int64, hash string) error {
	_, err := s.db.Exec(`UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

func (s *UserStore) ClearPassword(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET password = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("clear password: %w", err)
	}
	return nil
}

// GetPasswordHash returns the stored bcrypt hash, or empty string when the
// user is passwordless.
func (s *UserStore) GetPasswordHash(id int64) (string, error) {
	var hash sql.NullString
	err := s.db.QueryRow(`SELECT password FROM users WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash.String, nil
}
