package tracker

import (
	"slices"
	"time"

	"github.com/sandeepkv93/streakd/internal/badge"
	"github.com/sandeepkv93/streakd/internal/focus"
	"github.com/sandeepkv93/streakd/internal/model"
)

type EventKind string

const (
	EventTaskAdded         EventKind = "task_added"
	EventTaskToggled       EventKind = "task_toggled"
	EventTaskEdited        EventKind = "task_edited"
	EventTaskDeleted       EventKind = "task_deleted"
	EventTaskRestored      EventKind = "task_restored"
	EventTasksImported     EventKind = "tasks_imported"
	EventBadgeUnlocked     EventKind = "badge_unlocked"
	EventCycleCompleted    EventKind = "cycle_completed"
	EventPersistenceFailed EventKind = "persistence_failed"
	EventDayRolledOver     EventKind = "day_rolled_over"
)

// Event is published to subscribers after the mutation that caused it has
// been applied and the tracker lock released.
type Event struct {
	Kind  EventKind
	At    time.Time
	Task  model.Task
	Badge badge.Badge
	Cycle focus.Completion
	Count int
	Err   error
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

func (t *Tracker) Subscribe(fn Listener) (unsubscribe func()) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	id := t.nextSub
	t.nextSub++
	t.subs = append(t.subs, subscription{id: id, fn: fn})
	return func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		t.subs = slices.DeleteFunc(t.subs, func(s subscription) bool { return s.id == id })
	}
}

func (t *Tracker) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	t.subMu.RLock()
	listeners := make([]Listener, 0, len(t.subs))
	for _, s := range t.subs {
		listeners = append(listeners, s.fn)
	}
	t.subMu.RUnlock()
	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
