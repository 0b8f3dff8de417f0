package store

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

var fixedNow = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func mustAdd(t *testing.T, s *Store, title string, cat model.Category, date, clock string, now time.Time) model.Task {
	t.Helper()
	task, err := s.Add(model.Draft{Title: title, Category: cat, Date: date, Time: clock}, now)
	if err != nil {
		t.Fatalf("add %q: %v", title, err)
	}
	return task
}

func TestAddAssignsIDAndDefaultPoints(t *testing.T) {
	s := New(time.UTC)
	task := mustAdd(t, s, "Read", model.CategoryStudy, "2026-02-09", "9:30", fixedNow)
	if task.Points != 30 || task.Time != "09:30" || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.ID != "1770624000000" {
		t.Fatalf("expected id from creation millis, got %s", task.ID)
	}

	second := mustAdd(t, s, "Water", model.CategoryWater, "2026-02-09", "10:00", fixedNow)
	if second.ID <= task.ID {
		t.Fatalf("expected increasing ids, got %s after %s", second.ID, task.ID)
	}
}

func TestAddRejectsInvalidDraftWithoutMutation(t *testing.T) {
	s := New(time.UTC)
	_, err := s.Add(model.Draft{Title: "", Category: model.CategoryWork, Date: "2026-02-09", Time: "10:00"}, fixedNow)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestToggleRoundTrip(t *testing.T) {
	s := New(time.UTC)
	task := mustAdd(t, s, "Run", model.CategoryExercise, "2026-02-09", "07:00", fixedNow)

	toggled, delta, err := s.ToggleCompleted(task.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("toggle on: %+v err=%v", toggled, err)
	}
	if delta != (model.Delta{Points: 25, Tasks: 1}) {
		t.Fatalf("unexpected delta %+v", delta)
	}

	back, delta2, err := s.ToggleCompleted(task.ID)
	if err != nil || back.Completed {
		t.Fatalf("toggle off: %+v err=%v", back, err)
	}
	if !delta.Add(delta2).IsZero() {
		t.Fatalf("expected deltas to cancel, got %+v + %+v", delta, delta2)
	}
}

func TestToggleUnknownIDIsNotFound(t *testing.T) {
	s := New(time.UTC)
	if _, _, err := s.ToggleCompleted("nope"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCompletedNeverUncompletes(t *testing.T) {
	s := New(time.UTC)
	task := mustAdd(t, s, "Ship", model.CategoryWork, "2026-02-09", "11:00", fixedNow)
	if _, d, _ := s.SetCompleted(task.ID, true); d.Tasks != 1 {
		t.Fatalf("expected completion delta, got %+v", d)
	}
	got, d, err := s.SetCompleted(task.ID, true)
	if err != nil || !got.Completed || !d.IsZero() {
		t.Fatalf("expected no-op, got %+v delta=%+v err=%v", got, d, err)
	}
}

func TestRemoveAndRestoreCompletedTask(t *testing.T) {
	s := New(time.UTC)
	a := mustAdd(t, s, "A", model.CategoryWork, "2026-02-09", "08:00", fixedNow)
	b := mustAdd(t, s, "B", model.CategoryStudy, "2026-02-09", "09:00", fixedNow)
	c := mustAdd(t, s, "C", model.CategoryOther, "2026-02-09", "10:00", fixedNow)
	if _, _, err := s.ToggleCompleted(b.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	removed, delta, err := s.Remove(b.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if delta != (model.Delta{Points: -30, Tasks: -1}) || removed.Index != 1 || removed.Date != "2026-02-09" {
		t.Fatalf("unexpected removal %+v delta=%+v", removed, delta)
	}

	restoreDelta, ok := s.Restore(removed)
	if !ok || restoreDelta != (model.Delta{Points: 30, Tasks: 1}) {
		t.Fatalf("unexpected restore delta %+v ok=%v", restoreDelta, ok)
	}
	day := s.Collection()["2026-02-09"]
	if len(day) != 3 || day[0].ID != a.ID || day[1].ID != b.ID || day[2].ID != c.ID {
		t.Fatalf("expected original order, got %+v", day)
	}
}

func TestRemoveLastTaskDropsBucket(t *testing.T) {
	s := New(time.UTC)
	task := mustAdd(t, s, "Only", model.CategoryOther, "2026-02-10", "08:00", fixedNow)
	if _, _, err := s.Remove(task.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Collection()["2026-02-10"]; ok {
		t.Fatal("expected empty bucket to be deleted")
	}
}

func TestEditMovesDateAndReportsPointsDelta(t *testing.T) {
	s := New(time.UTC)
	task := mustAdd(t, s, "Gym", model.CategoryExercise, "2026-02-09", "18:00", fixedNow)
	if _, _, err := s.ToggleCompleted(task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	date := "2026-02-10"
	cat := model.CategoryStudy
	edited, delta, err := s.Edit(task.ID, Patch{Date: &date, Category: &cat})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Date != date || edited.Points != 30 || !edited.Completed {
		t.Fatalf("unexpected edit result %+v", edited)
	}
	if delta != (model.Delta{Points: 5}) {
		t.Fatalf("expected +5 points delta, got %+v", delta)
	}
	if len(s.QueryByDate("2026-02-09")) != 0 || len(s.QueryByDate(date)) != 1 {
		t.Fatal("expected task to move buckets")
	}

	bad := "noon"
	if _, _, err := s.Edit(task.ID, Patch{Time: &bad}); !errors.Is(err, model.ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
}

func TestQueryByDateSortsByTime(t *testing.T) {
	s := New(time.UTC)
	mustAdd(t, s, "late", model.CategoryOther, "2026-02-09", "21:00", fixedNow)
	mustAdd(t, s, "early", model.CategoryOther, "2026-02-09", "06:15", fixedNow)
	got := s.QueryByDate("2026-02-09")
	if got[0].Title != "early" || got[1].Title != "late" {
		t.Fatalf("unexpected order %+v", got)
	}
	if empty := s.QueryByDate("2030-01-01"); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestQueryAppliesFilter(t *testing.T) {
	s := New(time.UTC)
	mustAdd(t, s, "Evening water", model.CategoryWater, "2026-02-09", "20:00", fixedNow)
	walk := mustAdd(t, s, "Walk", model.CategoryExercise, "2026-02-09", "07:00", fixedNow)
	mustAdd(t, s, "Morning water", model.CategoryWater, "2026-02-09", "07:30", fixedNow)
	if _, _, err := s.ToggleCompleted(walk.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	water := s.Query("2026-02-09", model.Filter{Search: "WATER"})
	if len(water) != 2 || water[0].Title != "Morning water" {
		t.Fatalf("unexpected search result %+v", water)
	}
	done := s.Query("2026-02-09", model.Filter{Status: model.StatusCompleted})
	if len(done) != 1 || done[0].ID != walk.ID {
		t.Fatalf("unexpected completed result %+v", done)
	}
	if got := s.Query("2026-02-09", model.Filter{Category: model.CategoryWater, Status: model.StatusCompleted}); len(got) != 0 {
		t.Fatalf("expected no completed water tasks, got %+v", got)
	}
	if got := s.Query("2026-02-09", model.Filter{}); len(got) != 3 {
		t.Fatalf("zero filter should return the whole day, got %d", len(got))
	}
}

func TestQueryOverdue(t *testing.T) {
	s := New(time.UTC)
	past := mustAdd(t, s, "past", model.CategoryWork, "2026-02-09", "07:00", fixedNow)
	mustAdd(t, s, "future", model.CategoryWork, "2026-02-09", "23:00", fixedNow)
	done := mustAdd(t, s, "done", model.CategoryWork, "2026-02-08", "07:00", fixedNow)
	if _, _, err := s.ToggleCompleted(done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	older := mustAdd(t, s, "older", model.CategoryWork, "2026-02-07", "12:00", fixedNow)

	got := s.QueryOverdue(fixedNow)
	if len(got) != 2 || got[0].ID != older.ID || got[1].ID != past.ID {
		t.Fatalf("unexpected overdue set %+v", got)
	}
}

func TestFromCollectionDropsDuplicateIDs(t *testing.T) {
	c := model.Collection{
		"2026-02-08": {{ID: "5", Title: "a", Category: model.CategoryOther, Time: "08:00"}},
		"2026-02-09": {{ID: "5", Title: "dup", Category: model.CategoryOther, Time: "09:00"}},
	}
	s, dropped := FromCollection(c, time.UTC)
	if dropped != 1 || s.Len() != 1 {
		t.Fatalf("expected one drop, got dropped=%d len=%d", dropped, s.Len())
	}
	next := mustAdd(t, s, "new", model.CategoryOther, "2026-02-09", "10:00", time.UnixMilli(1).UTC())
	if next.ID != "6" {
		t.Fatalf("expected id after loaded max, got %s", next.ID)
	}
}

func TestRandomMutationsKeepCompletedSumsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(time.UTC)
	ids := []string{}
	points, tasks := 0, 0
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			task := mustAdd(t, s, "t", model.Categories()[rng.Intn(5)], "2026-02-09", "08:00", fixedNow)
			ids = append(ids, task.ID)
		case op == 1:
			_, d, err := s.ToggleCompleted(ids[rng.Intn(len(ids))])
			if err == nil {
				points += d.Points
				tasks += d.Tasks
			}
		default:
			idx := rng.Intn(len(ids))
			_, d, err := s.Remove(ids[idx])
			if err == nil {
				points += d.Points
				tasks += d.Tasks
			}
			ids = append(ids[:idx], ids[idx+1:]...)
		}
		if points < 0 || tasks < 0 {
			t.Fatalf("negative totals at step %d: points=%d tasks=%d", i, points, tasks)
		}
	}
	wantTasks, wantPoints := s.Collection().CompletedOn("2026-02-09")
	if wantTasks != tasks || wantPoints != points {
		t.Fatalf("delta sums drifted: got %d/%d want %d/%d", tasks, points, wantTasks, wantPoints)
	}
}
