package store

import (
	"testing"
	"time"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/model"
)

func setupLeaderboardTestDB(t *testing.T) (*LeaderboardStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLeaderboardStore(db), NewUserStore(db)
}

func TestLeaderboardArchive(t *testing.T) {
	ls, us := setupLeaderboardTestDB(t)
	kid, _ := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")

	end := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	entry, err := ls.Archive("week", kid.ID, 120, end)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if entry.WinnerID != kid.ID || entry.XPAtEnd != 120 || entry.Period != "week" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLeaderboardHistoryOrder(t *testing.T) {
	ls, us := setupLeaderboardTestDB(t)
	kid, _ := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")

	older := time.Date(2026, 2, 28, 19, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	ls.Archive("week", kid.ID, 80, older)
	ls.Archive("week", kid.ID, 120, newer)

	history, err := ls.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d entries, want 2", len(history))
	}
	if history[0].XPAtEnd != 120 {
		t.Errorf("history[0].XPAtEnd = %d, want 120 (newest first)", history[0].XPAtEnd)
	}

	latest, err := ls.Latest("week")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.XPAtEnd != 120 {
		t.Errorf("latest = %+v, want the newer entry", latest)
	}
}

func TestLeaderboardLatestEmpty(t *testing.T) {
	ls, _ := setupLeaderboardTestDB(t)

	latest, err := ls.Latest("week")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil", latest)
	}
}
