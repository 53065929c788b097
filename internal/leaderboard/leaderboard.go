package leaderboard

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/store"
)

// PeriodWeek is the only period the reset path writes. The history table
// also accepts "month" but nothing archives it yet.
const PeriodWeek = "week"

// Service ranks users by period XP and rolls the period over on a schedule.
type Service struct {
	db       *sql.DB
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewService(db *sql.DB, notifier *notify.Notifier, logger *slog.Logger) *Service {
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Rank sorts users by period XP descending. The sort is stable: ties keep
// their input order.
func Rank(users []model.User) []model.User {
	ranked := make([]model.User, len(users))
	copy(ranked, users)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].XP > ranked[j].XP
	})
	return ranked
}

// Standings returns the current-period leaderboard with 1-based ranks.
func (s *Service) Standings() ([]model.Standing, error) {
	users, err := store.NewUserStore(s.db).List()
	if err != nil {
		return nil, err
	}

	ranked := Rank(users)
	standings := make([]model.Standing, 0, len(ranked))
	for i, u := range ranked {
		standings = append(standings, model.Standing{
			Rank:    i + 1,
			UserID:  u.ID,
			Name:    u.Name,
			Avatar:  u.Avatar,
			Color:   u.Color,
			XP:      u.XP,
			TotalXP: u.TotalXP,
			Level:   u.Level,
		})
	}
	return standings, nil
}

// ResetPeriod closes the weekly competition: the max-XP user is archived
// (only when they actually earned XP) and every user's period XP is zeroed.
// Lifetime totals and spendable points are untouched. Returns the archived
// row, or nil when the period had no winner.
func (s *Service) ResetPeriod() (*model.LeaderboardHistory, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	users := store.NewUserStore(tx)
	history := store.NewLeaderboardStore(tx)
	notifs := store.NewNotificationStore(tx)

	all, err := users.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, tx.Commit()
	}

	ranked := Rank(all)
	winner := ranked[0]

	var archived *model.LeaderboardHistory
	var pending []model.Notification

	if winner.XP > 0 {
		archived, err = history.Archive(PeriodWeek, winner.ID, winner.XP, time.Now())
		if err != nil {
			return nil, err
		}

		for _, u := range all {
			n, err := notifs.Create(u.ID, model.NotifLeaderboardChange, "New week!",
				fmt.Sprintf("%s won the week with %d XP. Fresh start!", winner.Name, winner.XP), &archived.ID)
			if err != nil {
				return nil, err
			}
			pending = append(pending, *n)
		}
	}

	if err := users.ResetAllXP(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notifier.AnnounceAll(pending)
	if archived != nil {
		s.logger.Info("leaderboard period reset", "winner_id", archived.WinnerID, "xp_at_end", archived.XPAtEnd)
	} else {
		s.logger.Info("leaderboard period reset", "winner_id", nil)
	}
	return archived, nil
}

// History returns archived periods, newest first.
func (s *Service) History() ([]model.LeaderboardHistory, error) {
	return store.NewLeaderboardStore(s.db).History()
}
