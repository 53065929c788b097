package economy

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/model"
	"github.com/pmelhus/homequest/internal/notify"
	"github.com/pmelhus/homequest/internal/store"
)

func setupEconomy(t *testing.T) (*Service, *sql.DB) {
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

func seedBuyer(t *testing.T, db *sql.DB, points int) *model.User {
	t.Helper()
	us := store.NewUserStore(db)
	kid, err := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")
	if err != nil {
		t.Fatalf("create kid: %v", err)
	}
	if points > 0 {
		if err := us.Credit(kid.ID, points); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	return kid
}

func seedParent(t *testing.T, db *sql.DB) *model.User {
	t.Helper()
	parent, err := store.NewUserStore(db).Create("Dad", model.RoleParent, "👨", "#112233")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	return parent
}

func TestPurchase(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 150)

	// Seed reward "1 Hour TV" costs 100
	rewards, _ := store.NewRewardStore(db).List()
	tv := rewards[0]

	activity, err := svc.Purchase(kid.ID, tv.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if activity.Type != model.ActivityPurchase {
		t.Errorf("activity type = %q, want purchase", activity.Type)
	}

	var details model.PurchaseDetails
	if err := json.Unmarshal(activity.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.RewardID != tv.ID || details.Cost != 100 {
		t.Errorf("details = %+v", details)
	}

	got, _ := store.NewUserStore(db).GetByID(kid.ID)
	if got.Points != 50 {
		t.Errorf("points = %d, want 50", got.Points)
	}
	if got.XPSpent != 100 {
		t.Errorf("xp_spent = %d, want 100", got.XPSpent)
	}
	if got.XP != 150 {
		t.Errorf("xp = %d, want 150 (spending does not affect the leaderboard)", got.XP)
	}
}

func TestPurchaseInsufficientPoints(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 50)

	rewards, _ := store.NewRewardStore(db).List()
	tv := rewards[0] // costs 100

	if _, err := svc.Purchase(kid.ID, tv.ID); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("purchase err = %v, want ErrInsufficientPoints", err)
	}

	// Nothing debited, nothing logged
	got, _ := store.NewUserStore(db).GetByID(kid.ID)
	if got.Points != 50 {
		t.Errorf("points = %d, want 50", got.Points)
	}
	activities, _ := store.NewActivityStore(db).ListByUser(kid.ID)
	if len(activities) != 0 {
		t.Errorf("activities = %d, want 0", len(activities))
	}
}

func TestPurchaseUnknownReward(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 500)

	if _, err := svc.Purchase(kid.ID, 9999); !errors.Is(err, ErrRewardNotFound) {
		t.Errorf("purchase err = %v, want ErrRewardNotFound", err)
	}
}

func TestApplyPenalty(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 10)
	parent := seedParent(t, db)

	activity, err := svc.ApplyPenalty(kid.ID, 25, "Skipped homework", parent.ID)
	if err != nil {
		t.Fatalf("apply penalty: %v", err)
	}

	var details model.PenaltyDetails
	if err := json.Unmarshal(activity.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Amount != 25 || details.AppliedBy != parent.ID {
		t.Errorf("details = %+v", details)
	}

	// Balance goes negative; XP untouched
	got, _ := store.NewUserStore(db).GetByID(kid.ID)
	if got.Points != -15 {
		t.Errorf("points = %d, want -15", got.Points)
	}
	if got.XP != 10 {
		t.Errorf("xp = %d, want 10", got.XP)
	}

	// Target was notified
	notifs, _ := store.NewNotificationStore(db).ListByUser(kid.ID)
	if len(notifs) != 1 || notifs[0].Type != model.NotifConsequenceApplied {
		t.Errorf("notifications = %+v, want one consequence_applied", notifs)
	}
}

func TestApplyPenaltyValidation(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 10)
	parent := seedParent(t, db)

	if _, err := svc.ApplyPenalty(kid.ID, 25, "  ", parent.ID); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("empty reason err = %v, want ErrTitleRequired", err)
	}
	if _, err := svc.ApplyPenalty(kid.ID, 0, "reason", parent.ID); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("zero amount err = %v, want ErrNegativeAmount", err)
	}
	if _, err := svc.ApplyPenalty(kid.ID, 25, "reason", kid.ID); !errors.Is(err, ErrNotParent) {
		t.Errorf("kid applier err = %v, want ErrNotParent", err)
	}
}

func TestSuggestionFlow(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 0)
	parent := seedParent(t, db)

	sug, err := svc.SuggestReward(kid.ID, "Trampoline time", 200, "🤸")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if sug.Status == nil || *sug.Status != string(model.SuggestionPending) {
		t.Fatalf("status = %v, want pending", sug.Status)
	}

	// No reward exists beyond the two seeds until approval
	rewards, _ := store.NewRewardStore(db).List()
	if len(rewards) != 2 {
		t.Fatalf("rewards before approval = %d, want 2", len(rewards))
	}

	reward, err := svc.ApproveSuggestion(sug.ID, parent.ID)
	if err != nil {
		t.Fatalf("approve suggestion: %v", err)
	}
	if reward.Title != "Trampoline time" || reward.Cost != 200 || reward.Icon != "🤸" {
		t.Errorf("reward = %+v", reward)
	}

	rewards, _ = store.NewRewardStore(db).List()
	if len(rewards) != 3 {
		t.Errorf("rewards after approval = %d, want 3", len(rewards))
	}

	// A second approval is rejected and mints no duplicate
	if _, err := svc.ApproveSuggestion(sug.ID, parent.ID); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("double approve err = %v, want ErrAlreadyResolved", err)
	}
	rewards, _ = store.NewRewardStore(db).List()
	if len(rewards) != 3 {
		t.Errorf("rewards after double approval = %d, want 3", len(rewards))
	}
}

func TestSuggestionApprovalRequiresParent(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 0)

	sug, _ := svc.SuggestReward(kid.ID, "Trampoline time", 200, "")
	if _, err := svc.ApproveSuggestion(sug.ID, kid.ID); !errors.Is(err, ErrNotParent) {
		t.Errorf("approve by kid err = %v, want ErrNotParent", err)
	}
}

func TestRejectSuggestion(t *testing.T) {
	svc, db := setupEconomy(t)
	kid := seedBuyer(t, db, 0)
	parent := seedParent(t, db)

	sug, _ := svc.SuggestReward(kid.ID, "Trampoline time", 200, "")
	if err := svc.RejectSuggestion(sug.ID, parent.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Rejected suggestions cannot be approved later
	if _, err := svc.ApproveSuggestion(sug.ID, parent.ID); !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("approve rejected err = %v, want ErrAlreadyResolved", err)
	}

	rewards, _ := store.NewRewardStore(db).List()
	if len(rewards) != 2 {
		t.Errorf("rewards = %d, want only the 2 seeds", len(rewards))
	}
}
