package store

import (
	"testing"

	"github.com/pmelhus/homequest/internal/database"
)

func setupRewardTestDB(t *testing.T) *RewardStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRewardStore(db)
}

func TestRewardSeedData(t *testing.T) {
	rs := setupRewardTestDB(t)

	rewards, err := rs.List()
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 2 {
		t.Fatalf("expected 2 seed rewards, got %d", len(rewards))
	}

	if rewards[0].Title != "1 Hour TV" || rewards[0].Cost != 100 {
		t.Errorf("rewards[0] = %q/%d, want %q/100", rewards[0].Title, rewards[0].Cost, "1 Hour TV")
	}
	if rewards[1].Title != "Ice Cream" || rewards[1].Cost != 500 {
		t.Errorf("rewards[1] = %q/%d, want %q/500", rewards[1].Title, rewards[1].Cost, "Ice Cream")
	}
}

func TestRewardCRUD(t *testing.T) {
	rs := setupRewardTestDB(t)

	reward, err := rs.Create("Movie Night", 300, "🎬")
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if reward.Title != "Movie Night" || reward.Cost != 300 || reward.Icon != "🎬" {
		t.Errorf("reward = %+v", reward)
	}

	got, err := rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got == nil || got.Title != "Movie Night" {
		t.Errorf("got %+v, want Movie Night", got)
	}

	updated, err := rs.Update(reward.ID, "Movie Night + Popcorn", 350, "🍿")
	if err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if updated.Cost != 350 || updated.Icon != "🍿" {
		t.Errorf("updated = %+v", updated)
	}

	if err := rs.Delete(reward.ID); err != nil {
		t.Fatalf("delete reward: %v", err)
	}
	got, err = rs.GetByID(reward.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func setupConsequenceTestDB(t *testing.T) *ConsequenceStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewConsequenceStore(db)
}

func TestConsequenceCRUD(t *testing.T) {
	cs := setupConsequenceTestDB(t)

	c, err := cs.Create("Skipped homework", 25)
	if err != nil {
		t.Fatalf("create consequence: %v", err)
	}
	if c.Title != "Skipped homework" || c.Points != 25 {
		t.Errorf("consequence = %+v", c)
	}

	updated, err := cs.Update(c.ID, "Skipped homework", 30)
	if err != nil {
		t.Fatalf("update consequence: %v", err)
	}
	if updated.Points != 30 {
		t.Errorf("points = %d, want 30", updated.Points)
	}

	list, err := cs.List()
	if err != nil {
		t.Fatalf("list consequences: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d, want 1", len(list))
	}

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete consequence: %v", err)
	}
	got, _ := cs.GetByID(c.ID)
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
