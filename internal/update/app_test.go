package update

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/focus"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestModel(t *testing.T) (Model, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 2, 11, 8, 0, 0, 0, time.UTC)}
	tr, err := tracker.New(t.Context(), tracker.Deps{
		Clock:     clock.Now,
		Location:  time.UTC,
		Durations: focus.Durations{Work: 2 * time.Second, ShortBreak: time.Second, LongBreak: time.Second, LongBreakEvery: 4},
	})
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	return NewModel(tr, Options{Context: t.Context(), Clock: clock.Now}), clock
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next, cmd
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runPalette(t *testing.T, m Model, command string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = step(t, m, keys("/"))
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m, _ = step(t, m, keys(command))
	return step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func quickAdd(t *testing.T, m Model, input string) Model {
	t.Helper()
	m, _ = step(t, m, keys("a"))
	if !m.QuickAdd.Active {
		t.Fatal("expected quick add to open")
	}
	m, _ = step(t, m, keys(input))
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewDay {
		t.Fatalf("expected default view %q, got %q", ViewDay, m.CurrentView)
	}
	if m.SelectedDate != "2026-02-11" {
		t.Fatalf("expected today selected, got %q", m.SelectedDate)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := step(t, m, keys("2"))
	if next.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", next.CurrentView)
	}
	next, _ = step(t, next, keys("3"))
	if next.CurrentView != ViewFocus {
		t.Fatalf("expected focus view, got %q", next.CurrentView)
	}

	next, _ = step(t, next, SwitchViewMsg{View: View("Unknown")})
	if next.CurrentView != ViewFocus {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := step(t, m, SetStatusMsg{Text: "ready"})
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	next, _ = step(t, next, AppErrorMsg{Err: errors.New("boom")})
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	next, _ = step(t, next, ClearStatusMsg{})
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := step(t, m, keys("q"))
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestQuickAddCreatesTaskOnSelectedDay(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "9:30 study read chapter 3")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	if len(m.Day.Items) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.Day.Items))
	}
	task := m.Day.Items[0]
	if task.Title != "read chapter 3" || task.Time != "09:30" || task.Points != 30 || task.Date != "2026-02-11" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if m.SelectedTaskID != task.ID {
		t.Fatalf("expected new task selected, got %q", m.SelectedTaskID)
	}

	m = quickAdd(t, m, "10:00 knitting scarf")
	if !m.Status.IsError || len(m.Day.Items) != 1 {
		t.Fatalf("expected category error without a new task, status=%+v items=%d", m.Status, len(m.Day.Items))
	}
}

func TestQuickAddPointsOverride(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "21:00 other points=5 journal")
	if m.Status.IsError || len(m.Day.Items) != 1 {
		t.Fatalf("unexpected state status=%+v items=%d", m.Status, len(m.Day.Items))
	}
	if got := m.Day.Items[0]; got.Points != 5 || got.Title != "journal" {
		t.Fatalf("expected 5 point journal task, got %+v", got)
	}
}

func TestDayFilterKeysAndPalette(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "07:00 water morning glass")
	m = quickAdd(t, m, "08:00 exercise run")
	m = quickAdd(t, m, "20:00 water evening glass")
	m.Day.Cursor = 0
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})

	m, _ = step(t, m, keys("c"))
	if m.Day.Filter.Category != model.CategoryWater || len(m.Day.Items) != 2 {
		t.Fatalf("expected water filter with 2 items, filter=%+v items=%d", m.Day.Filter, len(m.Day.Items))
	}
	m, _ = step(t, m, keys("s"))
	if m.Day.Filter.Status != model.StatusPending || len(m.Day.Items) != 1 || m.Day.Items[0].Title != "evening glass" {
		t.Fatalf("expected only the pending water task, got %+v", m.Day.Items)
	}
	if !strings.Contains(m.View(), "filter: category=water status=pending") {
		t.Fatal("expected active filter in the day view")
	}
	m, _ = step(t, m, keys("C"))
	if !m.Day.Filter.IsZero() || len(m.Day.Items) != 3 {
		t.Fatalf("expected filters cleared, filter=%+v items=%d", m.Day.Filter, len(m.Day.Items))
	}

	m, _ = runPalette(t, m, "filter GLASS status=done")
	if m.Status.IsError || len(m.Day.Items) != 1 || m.Day.Items[0].Title != "morning glass" {
		t.Fatalf("expected completed glass task, status=%+v items=%+v", m.Status, m.Day.Items)
	}
	m, _ = runPalette(t, m, "filter status=someday")
	if !m.Status.IsError || m.Day.Filter.Search != "GLASS" {
		t.Fatalf("expected rejected status to keep the filter, status=%+v filter=%+v", m.Status, m.Day.Filter)
	}
	m, _ = runPalette(t, m, "filter knitting-free nothing")
	if len(m.Day.Items) != 0 || !strings.Contains(m.View(), "no tasks match the filter") {
		t.Fatalf("expected empty filtered day, got %+v", m.Day.Items)
	}
	m, _ = runPalette(t, m, "filter clear")
	if len(m.Day.Items) != 3 {
		t.Fatalf("expected all tasks after clear, got %d", len(m.Day.Items))
	}
}

func TestToggleDeleteAndUndoKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "09:00 exercise run")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.Day.Items[0].Completed || m.tracker.Stats().TotalPoints != 25 {
		t.Fatalf("expected completed task worth 25, stats=%+v", m.tracker.Stats())
	}

	m, cmd := step(t, m, keys("d"))
	if len(m.Day.Items) != 0 || m.tracker.Stats().TotalPoints != 0 {
		t.Fatalf("expected delete to remove task and points, stats=%+v", m.tracker.Stats())
	}
	if cmd == nil {
		t.Fatal("expected undo expiry command")
	}

	m, _ = step(t, m, keys("u"))
	if len(m.Day.Items) != 1 || !m.Day.Items[0].Completed {
		t.Fatalf("expected completed task restored, got %+v", m.Day.Items)
	}
	if m.tracker.Stats().TotalPoints != 25 {
		t.Fatalf("expected points restored, got %d", m.tracker.Stats().TotalPoints)
	}
}

func TestUndoExpiredMsgMakesDeletionFinal(t *testing.T) {
	m, clock := newTestModel(t)
	m = quickAdd(t, m, "09:00 work report")
	m, _ = step(t, m, keys("d"))

	clock.Advance(tracker.DefaultUndoWindow + time.Second)
	m, _ = step(t, m, UndoExpiredMsg{})
	if m.Status.Text != "deletion is final" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	m, _ = step(t, m, keys("u"))
	if len(m.Day.Items) != 0 || m.Status.Text != "nothing to undo" {
		t.Fatalf("expected nothing to undo, status=%q items=%d", m.Status.Text, len(m.Day.Items))
	}
}

func TestPaletteGotoAndEdit(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "09:00 water glass")
	id := m.Day.Items[0].ID

	m, _ = runPalette(t, m, "edit "+id+" title=two glasses points=15")
	if m.Status.IsError {
		t.Fatalf("edit failed: %s", m.Status.Text)
	}
	if got := m.Day.Items[0]; got.Title != "two glasses" || got.Points != 15 {
		t.Fatalf("unexpected edited task %+v", got)
	}

	m, _ = runPalette(t, m, "goto +1")
	if m.SelectedDate != "2026-02-12" || len(m.Day.Items) != 0 {
		t.Fatalf("expected empty next day, got %s with %d items", m.SelectedDate, len(m.Day.Items))
	}
	m, _ = step(t, m, keys("h"))
	if m.SelectedDate != "2026-02-11" || len(m.Day.Items) != 1 {
		t.Fatalf("expected back on today, got %s", m.SelectedDate)
	}

	m, _ = runPalette(t, m, "edit 999 title=x")
	if !m.Status.IsError {
		t.Fatal("expected not found error")
	}
}

func TestFocusStaleTickIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = step(t, m, keys("3"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if cmd == nil || !m.tracker.Focus().Running {
		t.Fatal("expected running timer with tick command")
	}
	gen := m.tracker.Focus().Generation

	m, cmd = step(t, m, FocusTickMsg{Gen: gen})
	if cmd == nil || m.tracker.Focus().Remaining != 1 {
		t.Fatalf("expected one second consumed, state=%+v", m.tracker.Focus())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, cmd = step(t, m, FocusTickMsg{Gen: gen})
	if cmd != nil || m.tracker.Focus().Remaining != 1 {
		t.Fatalf("stale tick should be dropped, state=%+v", m.tracker.Focus())
	}
}

func TestFocusCycleAutoCompletesBoundTask(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "09:00 study flashcards")
	m, _ = step(t, m, keys("f"))
	if m.CurrentView != ViewFocus || m.tracker.Focus().BoundTaskID != m.Day.Items[0].ID {
		t.Fatalf("expected focus bound to task, state=%+v", m.tracker.Focus())
	}
	m, _ = step(t, m, keys("a"))
	if !m.tracker.Focus().AutoComplete {
		t.Fatal("expected auto-complete on")
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	gen := m.tracker.Focus().Generation
	m, _ = step(t, m, FocusTickMsg{Gen: gen})
	m, cmd := step(t, m, FocusTickMsg{Gen: gen})
	if cmd != nil {
		t.Fatal("completed cycle should not schedule another tick")
	}
	if !m.Day.Items[0].Completed {
		t.Fatal("expected bound task completed")
	}
	if !strings.Contains(m.Status.Text, "session 1 complete") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if st := m.tracker.Focus(); st.Mode != focus.ModeShortBreak || st.SessionsToday != 1 {
		t.Fatalf("unexpected focus state %+v", st)
	}
}

func TestTrackerEventsReachNotificationLog(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "09:00 other tidy desk")
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeySpace})

	for len(m.events) > 0 {
		msg := waitForTrackerEventCmd(m.events)()
		m, _ = step(t, m, msg)
	}
	found := false
	for _, n := range m.Notifications {
		if n.Title == "Badge unlocked" && strings.Contains(n.Body, "First Step") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected badge notification, got %+v", m.Notifications)
	}
}

func TestExportThenRejectedImport(t *testing.T) {
	m, _ := newTestModel(t)
	m = quickAdd(t, m, "09:00 work inbox zero")
	dir := t.TempDir()
	out := filepath.Join(dir, "tasks.json")

	m, _ = runPalette(t, m, "export "+out)
	if m.Status.IsError {
		t.Fatalf("export failed: %s", m.Status.Text)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(raw), "inbox zero") {
		t.Fatalf("export missing task: %s", raw)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"tasks": []}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, _ = runPalette(t, m, "import "+bad)
	if !m.Status.IsError || len(m.Day.Items) != 1 {
		t.Fatalf("expected rejected import, status=%+v items=%d", m.Status, len(m.Day.Items))
	}

	m, _ = runPalette(t, m, "import "+out)
	if m.Status.IsError || len(m.Day.Items) != 1 {
		t.Fatalf("expected round-trip import, status=%+v items=%d", m.Status, len(m.Day.Items))
	}
}

func TestRolloverFollowsToday(t *testing.T) {
	m, clock := newTestModel(t)
	clock.Advance(24 * time.Hour)
	m, _ = step(t, m, RolloverMsg{})
	if m.SelectedDate != "2026-02-12" {
		t.Fatalf("expected view to move to new today, got %s", m.SelectedDate)
	}

	m, _ = runPalette(t, m, "goto 2026-01-01")
	clock.Advance(24 * time.Hour)
	m, _ = step(t, m, RolloverMsg{})
	if m.SelectedDate != "2026-01-01" {
		t.Fatalf("expected a browsed day to stay put, got %s", m.SelectedDate)
	}
}

func TestOverdueSweepReportsPastDeadlines(t *testing.T) {
	m, clock := newTestModel(t)
	m = quickAdd(t, m, "08:30 work standup")
	clock.Advance(time.Hour)
	m, _ = step(t, m, OverdueSweepMsg{})
	if len(m.Overdue) != 1 || m.Status.Text != "1 overdue task(s)" {
		t.Fatalf("expected one overdue task, got %d (%q)", len(m.Overdue), m.Status.Text)
	}
	if out := m.View(); !strings.Contains(out, "overdue (1)") {
		t.Fatalf("expected overdue banner in view: %q", out)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, _ := newTestModel(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	if !strings.Contains(out, "[Day]") {
		t.Fatalf("expected active view tab in output: %q", out)
	}
	if !strings.Contains(out, "2026-02-11 (today)") {
		t.Fatalf("expected selected date in output: %q", out)
	}
	if !strings.Contains(out, "0 pts") || !strings.Contains(out, "streak 0") {
		t.Fatalf("expected score segments in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
}
