package leaderboard

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/store"
)

func setupLeaderboard(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := notify.New(nil, nil, store.NewPushStore(db), logger)
	return NewService(db, notifier, logger), db
}

func seedWithXP(t *testing.T, db *sql.DB, name string, xp int) *model.User {
	t.Helper()
	us := store.NewUserStore(db)
	u, err := us.Create(name, model.RoleKid, "😀", "#000000")
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if xp > 0 {
		if err := us.Credit(u.ID, xp); err != nil {
			t.Fatalf("credit %s: %v", name, err)
		}
	}
	return u
}

func TestRank(t *testing.T) {
	users := []model.User{
		{ID: 1, Name: "Adam", XP: 10},
		{ID: 2, Name: "Maya", XP: 30},
		{ID: 3, Name: "Zoe", XP: 20},
	}

	ranked := Rank(users)

	want := []int{30, 20, 10}
	for i, xp := range want {
		if ranked[i].XP != xp {
			t.Errorf("ranked[%d].XP = %d, want %d", i, ranked[i].XP, xp)
		}
	}

	// Input untouched
	if users[0].XP != 10 {
		t.Errorf("input mutated: users[0].XP = %d", users[0].XP)
	}
}

func TestRankStableOnTies(t *testing.T) {
	users := []model.User{
		{ID: 1, Name: "Adam", XP: 20},
		{ID: 2, Name: "Maya", XP: 20},
		{ID: 3, Name: "Zoe", XP: 20},
	}

	ranked := Rank(users)

	for i, wantID := range []int64{1, 2, 3} {
		if ranked[i].ID != wantID {
			t.Errorf("ranked[%d].ID = %d, want %d (ties keep input order)", i, ranked[i].ID, wantID)
		}
	}
}

func TestStandings(t *testing.T) {
	svc, db := setupLeaderboard(t)
	seedWithXP(t, db, "Adam", 10)
	maya := seedWithXP(t, db, "Maya", 30)
	seedWithXP(t, db, "Zoe", 20)

	standings, err := svc.Standings()
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 3 {
		t.Fatalf("standings = %d, want 3", len(standings))
	}
	if standings[0].Rank != 1 || standings[0].UserID != maya.ID {
		t.Errorf("standings[0] = %+v, want Maya at rank 1", standings[0])
	}
	if standings[2].XP != 10 {
		t.Errorf("standings[2].XP = %d, want 10", standings[2].XP)
	}
}

func TestResetPeriodArchivesWinner(t *testing.T) {
	svc, db := setupLeaderboard(t)
	adam := seedWithXP(t, db, "Adam", 20)
	maya := seedWithXP(t, db, "Maya", 50)

	entry, err := svc.ResetPeriod()
	if err != nil {
		t.Fatalf("reset period: %v", err)
	}
	if entry == nil {
		t.Fatal("entry = nil, want archived winner")
	}
	if entry.WinnerID != maya.ID || entry.XPAtEnd != 50 || entry.Period != PeriodWeek {
		t.Errorf("entry = %+v", entry)
	}

	// Everyone's period XP zeroed; lifetime totals and points untouched
	us := store.NewUserStore(db)
	for _, id := range []int64{adam.ID, maya.ID} {
		got, _ := us.GetByID(id)
		if got.XP != 0 {
			t.Errorf("user %d xp = %d, want 0", id, got.XP)
		}
	}
	gotMaya, _ := us.GetByID(maya.ID)
	if gotMaya.TotalXP != 50 || gotMaya.Points != 50 {
		t.Errorf("lifetime totals changed: total_xp=%d points=%d", gotMaya.TotalXP, gotMaya.Points)
	}

	history, _ := svc.History()
	if len(history) != 1 {
		t.Errorf("history = %d entries, want 1", len(history))
	}

	// Everyone heard about the new week
	notifs, _ := store.NewNotificationStore(db).ListByUser(adam.ID)
	if len(notifs) != 1 || notifs[0].Type != model.NotifLeaderboardChange {
		t.Errorf("notifications = %+v, want one leaderboard_change", notifs)
	}
}

func TestResetPeriodNoXPNoArchive(t *testing.T) {
	svc, db := setupLeaderboard(t)
	seedWithXP(t, db, "Adam", 0)
	seedWithXP(t, db, "Maya", 0)

	entry, err := svc.ResetPeriod()
	if err != nil {
		t.Fatalf("reset period: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil when nobody earned XP", entry)
	}

	history, _ := svc.History()
	if len(history) != 0 {
		t.Errorf("history = %d entries, want 0", len(history))
	}
}

func TestResetPeriodEmptyHousehold(t *testing.T) {
	svc, _ := setupLeaderboard(t)

	entry, err := svc.ResetPeriod()
	if err != nil {
		t.Fatalf("reset period: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}
}
