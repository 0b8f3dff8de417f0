package tracker

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/store"
	"github.com/sandeepkv93/streakd/internal/transfer"
)

func (t *Tracker) Add(ctx context.Context, d model.Draft) (model.Task, error) {
	var m mutation
	t.mu.Lock()
	now := t.clock()
	if d.Date == "" {
		d.Date = model.DateKey(now)
	}
	task, err := t.store.Add(d, now)
	if err != nil {
		t.mu.Unlock()
		return model.Task{}, err
	}
	t.notifier.ScheduleDeadlineReminder(task, now)
	m.emit(Event{Kind: EventTaskAdded, At: now, Task: task})
	t.save(ctx, &m)
	t.mu.Unlock()
	t.logger.Debug("task added", "id", task.ID, "date", task.Date)
	return task, t.finish(ctx, &m)
}

// Toggle flips a task's completion. A missing id is a no-op reported through
// the boolean.
func (t *Tracker) Toggle(ctx context.Context, id string) (model.Task, bool, error) {
	var m mutation
	t.mu.Lock()
	task, delta, err := t.store.ToggleCompleted(id)
	if err != nil {
		t.mu.Unlock()
		if errors.Is(err, model.ErrNotFound) {
			t.logger.Debug("toggle of missing task ignored", "id", id)
			return model.Task{}, false, nil
		}
		return model.Task{}, false, err
	}
	t.syncReminder(task)
	t.applyDelta(&m, delta)
	m.emit(Event{Kind: EventTaskToggled, At: t.clock(), Task: task})
	t.save(ctx, &m)
	t.mu.Unlock()
	return task, true, t.finish(ctx, &m)
}

func (t *Tracker) Edit(ctx context.Context, id string, p store.Patch) (model.Task, error) {
	var m mutation
	t.mu.Lock()
	task, delta, err := t.store.Edit(id, p)
	if err != nil {
		t.mu.Unlock()
		return model.Task{}, err
	}
	t.syncReminder(task)
	t.applyDelta(&m, delta)
	m.emit(Event{Kind: EventTaskEdited, At: t.clock(), Task: task})
	t.save(ctx, &m)
	t.mu.Unlock()
	return task, t.finish(ctx, &m)
}

// Delete removes a task and stages it for Undo, replacing any deletion that
// was still pending. A missing id is a no-op.
func (t *Tracker) Delete(ctx context.Context, id string) (model.Task, bool, error) {
	var m mutation
	t.mu.Lock()
	removed, delta, err := t.store.Remove(id)
	if err != nil {
		t.mu.Unlock()
		if errors.Is(err, model.ErrNotFound) {
			return model.Task{}, false, nil
		}
		return model.Task{}, false, err
	}
	now := t.clock()
	t.undo = &pendingUndo{removed: removed, expires: now.Add(t.undoWindow)}
	t.notifier.CancelTask(id)
	t.applyDelta(&m, delta)
	m.emit(Event{Kind: EventTaskDeleted, At: now, Task: removed.Task})
	t.save(ctx, &m)
	t.mu.Unlock()
	return removed.Task, true, t.finish(ctx, &m)
}

// Undo restores the most recent deletion while its window is open. It reports
// false when there is nothing to restore.
func (t *Tracker) Undo(ctx context.Context) (model.Task, bool, error) {
	var m mutation
	t.mu.Lock()
	pending := t.undo
	t.undo = nil
	now := t.clock()
	if pending == nil || now.After(pending.expires) {
		t.mu.Unlock()
		return model.Task{}, false, nil
	}
	delta, ok := t.store.Restore(pending.removed)
	if !ok {
		t.mu.Unlock()
		return model.Task{}, false, nil
	}
	task := pending.removed.Task
	t.syncReminder(task)
	t.applyDelta(&m, delta)
	m.emit(Event{Kind: EventTaskRestored, At: now, Task: task})
	t.save(ctx, &m)
	t.mu.Unlock()
	return task, true, t.finish(ctx, &m)
}

// UndoDeadline reports when the pending deletion stops being restorable.
func (t *Tracker) UndoDeadline() (model.Task, time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.undo == nil || t.clock().After(t.undo.expires) {
		return model.Task{}, time.Time{}, false
	}
	return t.undo.removed.Task, t.undo.expires, true
}

// ExpireUndo drops the pending deletion once its window has passed.
func (t *Tracker) ExpireUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.undo == nil || !t.clock().After(t.undo.expires) {
		return false
	}
	t.undo = nil
	return true
}

// Import replaces the whole collection with the decoded payload. A payload
// that is not a valid task array leaves everything unchanged. The running
// point and task totals are kept; they record history, not the current
// collection.
func (t *Tracker) Import(ctx context.Context, r io.Reader) (int, error) {
	tasks, err := transfer.Decode(r, transfer.Options{Location: t.loc, Now: t.now})
	if err != nil {
		return 0, err
	}
	var m mutation
	t.mu.Lock()
	for _, old := range t.store.All() {
		t.notifier.CancelTask(old.ID)
	}
	t.store.Replace(tasks)
	t.undo = nil
	t.scheduleUpcoming()
	t.applyDelta(&m, model.Delta{})
	m.emit(Event{Kind: EventTasksImported, At: t.clock(), Count: len(tasks)})
	t.save(ctx, &m)
	t.mu.Unlock()
	t.logger.Info("tasks imported", "count", len(tasks))
	return len(tasks), t.finish(ctx, &m)
}

func (t *Tracker) Export(w io.Writer) error {
	t.mu.Lock()
	tasks := t.store.All()
	t.mu.Unlock()
	return transfer.Encode(w, tasks)
}

func (t *Tracker) Day(dateKey string) []model.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.QueryByDate(dateKey)
}

func (t *Tracker) Query(dateKey string, f model.Filter) []model.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Query(dateKey, f)
}

func (t *Tracker) Find(id string) (model.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Find(id)
}

func (t *Tracker) Overdue() []model.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.QueryOverdue(t.clock())
}

// DeliverReminder shows a fired deadline reminder unless its task has been
// completed or deleted since it was scheduled.
func (t *Tracker) DeliverReminder(ctx context.Context, ev scheduler.Event) (bool, error) {
	t.mu.Lock()
	task, ok := t.store.Find(ev.TaskID)
	t.mu.Unlock()
	if !ok || task.Completed {
		t.notifier.CancelTask(ev.TaskID)
		return false, nil
	}
	return t.notifier.Deliver(ctx, ev)
}

// syncReminder keeps the pending reminder in line with the task. Caller holds
// t.mu.
func (t *Tracker) syncReminder(task model.Task) {
	if task.Completed {
		t.notifier.CancelTask(task.ID)
		return
	}
	t.notifier.ScheduleDeadlineReminder(task, t.clock())
}

// scheduleUpcoming arms reminders for every open task. Caller holds t.mu or
// owns t exclusively.
func (t *Tracker) scheduleUpcoming() {
	now := t.clock()
	for _, task := range t.store.All() {
		if !task.Completed {
			t.notifier.ScheduleDeadlineReminder(task, now)
		}
	}
}
