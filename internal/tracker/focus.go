package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/streakd/internal/focus"
	"github.com/sandeepkv93/streakd/internal/model"
)

// StartFocus starts the countdown and returns the generation that tick
// messages must carry.
func (t *Tracker) StartFocus() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer.Start()
}

func (t *Tracker) PauseFocus() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer.Pause()
}

func (t *Tracker) ResetFocus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Reset()
}

// BindFocus attaches the timer to a task. The binding is by id only.
func (t *Tracker) BindFocus(id string) (model.Task, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.store.Find(id)
	if !ok {
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	t.timer.Bind(id)
	return task, nil
}

func (t *Tracker) UnbindFocus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Unbind()
}

func (t *Tracker) SetAutoComplete(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.SetAutoComplete(on)
}

func (t *Tracker) Focus() focus.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer.Snapshot()
}

// FocusTick advances the timer by one second for the run identified by gen.
// On a cycle completion it marks the bound task done when auto-complete is on,
// publishes the cycle and raises a notification.
func (t *Tracker) FocusTick(ctx context.Context, gen uint64) (focus.Completion, bool, error) {
	var m mutation
	t.mu.Lock()
	c, done := t.timer.TickFor(gen)
	if !done {
		t.mu.Unlock()
		return focus.Completion{}, false, nil
	}
	now := t.clock()
	if c.CompletesTask() {
		// SetCompleted rather than a toggle: a task finished by hand during the
		// session stays finished.
		task, delta, err := t.store.SetCompleted(c.BoundTaskID, true)
		if err != nil {
			t.logger.Debug("bound task is gone", "id", c.BoundTaskID)
		} else if !delta.IsZero() {
			t.syncReminder(task)
			t.applyDelta(&m, delta)
			m.emit(Event{Kind: EventTaskToggled, At: now, Task: task})
		}
	}
	m.emit(Event{Kind: EventCycleCompleted, At: now, Cycle: c})
	m.notices = append(m.notices, cycleNotice(c))
	t.save(ctx, &m)
	t.mu.Unlock()
	t.logger.Info("focus cycle completed", "mode", c.Mode, "next", c.Next, "sessions", c.Sessions)
	return c, true, t.finish(ctx, &m)
}

func cycleNotice(c focus.Completion) notice {
	if c.Mode == focus.ModeWork {
		return notice{
			title: "Focus session complete",
			body:  fmt.Sprintf("Session %d done. Time for a %s.", c.Sessions, strings.ToLower(c.Next.Label())),
		}
	}
	return notice{title: "Break over", body: "Ready for the next focus session."}
}
