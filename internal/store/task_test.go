package store

import (
	"testing"

	"github.com/pmelhus/homequest/internal/database"
	"github.com/pmelhus/homequest/internal/model"
)

func setupTaskTestDB(t *testing.T) (*TaskStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db), NewUserStore(db)
}

func seedParentAndKid(t *testing.T, us *UserStore) (parent, kid *model.User) {
	t.Helper()
	parent, err := us.Create("Dad", model.RoleParent, "👨", "#112233")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	kid, err = us.Create("Maya", model.RoleKid, "🦊", "#FF8800")
	if err != nil {
		t.Fatalf("create kid: %v", err)
	}
	return parent, kid
}

func TestTaskCreate(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	task, err := ts.Create("Dishes", 10, model.AssignMember, &kid.ID, model.RecurrenceDaily, 1, parent.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Title != "Dishes" {
		t.Errorf("title = %q, want %q", task.Title, "Dishes")
	}
	if task.Status != model.TaskPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.AssignMode != model.AssignMember {
		t.Errorf("assign_mode = %q, want member", task.AssignMode)
	}
	if task.AssignedTo == nil || *task.AssignedTo != kid.ID {
		t.Errorf("assigned_to = %v, want %d", task.AssignedTo, kid.ID)
	}
	if task.CurrentCount != 0 {
		t.Errorf("current_count = %d, want 0", task.CurrentCount)
	}
	if !task.IsRecurring() {
		t.Error("daily task should be recurring")
	}
}

func TestTaskAssign(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	task, err := ts.Create("Rake leaves", 20, model.AssignUnassigned, nil, model.RecurrenceNone, 1, parent.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.AssignedTo != nil {
		t.Fatalf("assigned_to = %v, want nil", task.AssignedTo)
	}

	if err := ts.Assign(task.ID, model.AssignMember, &kid.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, _ := ts.GetByID(task.ID)
	if got.AssignMode != model.AssignMember {
		t.Errorf("assign_mode = %q, want member", got.AssignMode)
	}
	if got.AssignedTo == nil || *got.AssignedTo != kid.ID {
		t.Errorf("assigned_to = %v, want %d", got.AssignedTo, kid.ID)
	}
}

func TestTaskProgressAndCompletion(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	task, err := ts.Create("Read 3 chapters", 15, model.AssignMember, &kid.ID, model.RecurrenceNone, 3, parent.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := ts.SetProgress(task.ID, 2); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	got, _ := ts.GetByID(task.ID)
	if got.CurrentCount != 2 {
		t.Errorf("current_count = %d, want 2", got.CurrentCount)
	}
	if got.Status != model.TaskPending {
		t.Errorf("status = %q, want pending", got.Status)
	}

	if err := ts.MarkCompleted(task.ID, 3, kid.ID); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ = ts.GetByID(task.ID)
	if got.Status != model.TaskCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.CompletedBy == nil || *got.CompletedBy != kid.ID {
		t.Errorf("completed_by = %v, want %d", got.CompletedBy, kid.ID)
	}

	if err := ts.MarkApproved(task.ID); err != nil {
		t.Fatalf("mark approved: %v", err)
	}
	got, _ = ts.GetByID(task.ID)
	if got.Status != model.TaskApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
}

func TestTaskResetCycle(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	task, _ := ts.Create("Feed cat", 5, model.AssignMember, &kid.ID, model.RecurrenceDaily, 2, parent.ID)
	ts.SetProgress(task.ID, 2)
	ts.MarkCompleted(task.ID, 2, kid.ID)

	if err := ts.ResetCycle(task.ID); err != nil {
		t.Fatalf("reset cycle: %v", err)
	}
	got, _ := ts.GetByID(task.ID)
	if got.Status != model.TaskPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
	if got.CurrentCount != 0 {
		t.Errorf("current_count = %d, want 0", got.CurrentCount)
	}
	if got.CompletedBy != nil {
		t.Errorf("completed_by = %v, want nil", got.CompletedBy)
	}
}

func TestTaskResetAllRecurring(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	daily, _ := ts.Create("Feed cat", 5, model.AssignMember, &kid.ID, model.RecurrenceDaily, 1, parent.ID)
	oneOff, _ := ts.Create("Clean garage", 50, model.AssignMember, &kid.ID, model.RecurrenceNone, 1, parent.ID)
	ts.MarkCompleted(daily.ID, 1, kid.ID)
	ts.MarkCompleted(oneOff.ID, 1, kid.ID)

	n, err := ts.ResetAllRecurring()
	if err != nil {
		t.Fatalf("reset all recurring: %v", err)
	}
	if n != 1 {
		t.Errorf("reset count = %d, want 1", n)
	}

	gotDaily, _ := ts.GetByID(daily.ID)
	if gotDaily.Status != model.TaskPending || gotDaily.CurrentCount != 0 {
		t.Errorf("daily task = %q/%d, want pending/0", gotDaily.Status, gotDaily.CurrentCount)
	}
	gotOneOff, _ := ts.GetByID(oneOff.ID)
	if gotOneOff.Status != model.TaskCompleted {
		t.Errorf("one-off task = %q, want completed (sweep skips non-recurring)", gotOneOff.Status)
	}
}

func TestTaskListFilters(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)
	other, _ := us.Create("Adam", model.RoleKid, "😀", "#000000")

	ts.Create("Dishes", 10, model.AssignMember, &kid.ID, model.RecurrenceNone, 1, parent.ID)
	ts.Create("Trash", 5, model.AssignMember, &other.ID, model.RecurrenceNone, 1, parent.ID)
	ts.Create("Rake leaves", 20, model.AssignUnassigned, nil, model.RecurrenceNone, 1, parent.ID)
	shared, _ := ts.Create("Tidy up", 5, model.AssignEveryone, nil, model.RecurrenceDaily, 1, parent.ID)
	ts.MarkCompleted(shared.ID, 1, kid.ID)

	all, err := ts.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("list = %d tasks, want 4", len(all))
	}

	// ListForUser sees the kid's own tasks plus unassigned and shared rows
	mine, err := ts.ListForUser(kid.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("list for user = %d tasks, want 3", len(mine))
	}
	for _, task := range mine {
		if task.AssignMode == model.AssignMember && *task.AssignedTo != kid.ID {
			t.Errorf("list for user leaked task assigned to %d", *task.AssignedTo)
		}
	}

	completed, err := ts.ListByStatus(model.TaskCompleted)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != shared.ID {
		t.Errorf("list by status = %v, want just the shared task", completed)
	}
}

func TestTaskDelete(t *testing.T) {
	ts, us := setupTaskTestDB(t)
	parent, kid := seedParentAndKid(t, us)

	task, _ := ts.Create("Dishes", 10, model.AssignMember, &kid.ID, model.RecurrenceNone, 1, parent.ID)
	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
