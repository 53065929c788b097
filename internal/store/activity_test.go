package store

import (
	"encoding/json"
	"testing"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/model"
)

func setupActivityTestDB(t *testing.T) (*ActivityStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewActivityStore(db), NewUserStore(db)
}

func TestActivityAppendWithDetails(t *testing.T) {
	as, us := setupActivityTestDB(t)
	kid, _ := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")

	activity, err := as.Append(kid.ID, model.ActivityPurchase, model.PurchaseDetails{
		RewardID: 1,
		Title:    "1 Hour TV",
		Cost:     100,
	}, "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if activity.Type != model.ActivityPurchase {
		t.Errorf("type = %q, want purchase", activity.Type)
	}
	if activity.Status != nil {
		t.Errorf("status = %v, want nil for purchase", *activity.Status)
	}

	var details model.PurchaseDetails
	if err := json.Unmarshal(activity.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Title != "1 Hour TV" || details.Cost != 100 {
		t.Errorf("details = %+v", details)
	}
}

func TestActivitySuggestionStatus(t *testing.T) {
	as, us := setupActivityTestDB(t)
	kid, _ := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")

	sug, err := as.Append(kid.ID, model.ActivitySuggestion, model.SuggestionDetails{
		Title:       "Trampoline time",
		Cost:        200,
		SuggestedBy: kid.ID,
	}, model.SuggestionPending)
	if err != nil {
		t.Fatalf("append suggestion: %v", err)
	}
	if sug.Status == nil || *sug.Status != string(model.SuggestionPending) {
		t.Fatalf("status = %v, want pending", sug.Status)
	}

	pending, err := as.ListSuggestions(model.SuggestionPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := as.SetSuggestionStatus(sug.ID, model.SuggestionApproved); err != nil {
		t.Fatalf("set status: %v", err)
	}

	pending, _ = as.ListSuggestions(model.SuggestionPending)
	if len(pending) != 0 {
		t.Errorf("pending after approval = %d, want 0", len(pending))
	}
	approved, _ := as.ListSuggestions(model.SuggestionApproved)
	if len(approved) != 1 {
		t.Errorf("approved = %d, want 1", len(approved))
	}
}

func TestActivityListByUser(t *testing.T) {
	as, us := setupActivityTestDB(t)
	maya, _ := us.Create("Maya", model.RoleKid, "🦊", "#FF8800")
	adam, _ := us.Create("Adam", model.RoleKid, "😀", "#000000")

	as.Append(maya.ID, model.ActivityPenalty, model.PenaltyDetails{Reason: "late", Amount: 5, AppliedBy: 1}, "")
	as.Append(adam.ID, model.ActivityPenalty, model.PenaltyDetails{Reason: "late", Amount: 5, AppliedBy: 1}, "")
	as.Append(maya.ID, model.ActivityPurchase, model.PurchaseDetails{RewardID: 1, Title: "1 Hour TV", Cost: 100}, "")

	mine, err := as.ListByUser(maya.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("maya activities = %d, want 2", len(mine))
	}

	all, err := as.List()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all activities = %d, want 3", len(all))
	}
}
