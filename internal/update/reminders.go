package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

func (m *Model) onReminder(ev scheduler.Event) {
	shown, err := m.tracker.DeliverReminder(m.ctx, ev)
	if err != nil {
		m.logger.Warn("reminder delivery failed", "task", ev.TaskID, "err", err)
	}
	if !shown {
		return
	}
	m.notify(ev.Title, ev.Body, "reminder")
	m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s", ev.Title)}
	m.Overdue = m.tracker.Overdue()
}

// onTrackerEvent mirrors core events into the notification log. Task edits
// are already reported by the action that caused them.
func (m *Model) onTrackerEvent(ev tracker.Event) {
	switch ev.Kind {
	case tracker.EventBadgeUnlocked:
		m.notify("Badge unlocked", fmt.Sprintf("%s: %s", ev.Badge.Name, ev.Badge.Description), "success")
	case tracker.EventCycleCompleted:
		m.notify("Focus", fmt.Sprintf("%s finished, %s next", ev.Cycle.Mode.Label(), ev.Cycle.Next.Label()), "info")
	case tracker.EventPersistenceFailed:
		if ev.Err != nil {
			m.notify("Save failed", ev.Err.Error(), "error")
		}
	case tracker.EventTasksImported:
		m.notify("Import", fmt.Sprintf("%d task(s) loaded", ev.Count), "info")
	case tracker.EventDayRolledOver:
		m.notify("New day", ev.At.Format("Monday, Jan 2"), "info")
	}
}

// onRollover follows the calendar: a view parked on the old today moves to
// the new one.
func (m *Model) onRollover() {
	before := m.SelectedDate
	oldToday := m.Day.today
	if err := m.tracker.Rollover(m.ctx); err != nil {
		m.setError(err)
	}
	today := m.tracker.Today()
	if before == oldToday || before == "" {
		m.goToDate(today)
	} else {
		m.refreshDay()
	}
	m.Day.today = today
	m.Overdue = m.tracker.Overdue()
}

func waitForReminderCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func waitForTrackerEventCmd(ch <-chan tracker.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return TrackerEventMsg{Event: ev}
	}
}
