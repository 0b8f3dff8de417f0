package update

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/commands"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) handleDayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Day.Cursor > 0 {
			m.Day.Cursor--
		}
		m.syncSelectedTaskToDayCursor()
	case "down", "j":
		if m.Day.Cursor < len(m.Day.Items)-1 {
			m.Day.Cursor++
		}
		m.syncSelectedTaskToDayCursor()
	case "left", "h":
		m.shiftSelectedDate(-1)
	case "right", "l":
		m.shiftSelectedDate(1)
	case "t":
		m.goToDate(m.tracker.Today())
	case " ", "x", "enter":
		if item, ok := m.currentDayItem(); ok {
			res, err := m.toggleTask(item.ID)
			m.report(res, err)
		}
	case "d", "delete":
		if item, ok := m.currentDayItem(); ok {
			res, err := m.deleteTask(item.ID)
			m.report(res, err)
			return m, m.undoExpiryCmd()
		}
	case "u":
		res, err := m.undoDelete()
		m.report(res, err)
	case "c":
		f := m.Day.Filter
		f.Category = f.NextCategory()
		m.setFilter(f)
		m.Status = StatusBar{Text: "filter: " + f.String()}
	case "s":
		f := m.Day.Filter
		f.Status = f.Status.Next()
		m.setFilter(f)
		m.Status = StatusBar{Text: "filter: " + f.String()}
	case "C":
		m.setFilter(model.Filter{})
		m.Status = StatusBar{Text: "filters cleared"}
	case "a":
		m.QuickAdd.Active = true
		m.QuickAdd.Input = ""
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		m.Status = StatusBar{Text: "quick add: HH:MM category [points=N] title"}
	case "f":
		if item, ok := m.currentDayItem(); ok {
			res, err := m.bindFocus(item.ID)
			m.report(res, err)
			if err == nil {
				m.CurrentView = ViewFocus
			}
		}
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closeQuickAdd()
		m.Status = StatusBar{Text: "quick add closed"}
	case "enter":
		input := m.quickAddInput.Value()
		m.closeQuickAdd()
		cmd, err := commands.Parse("add " + input)
		if err != nil {
			m.setError(err)
			return m
		}
		res, err := m.addTask(*cmd.Add)
		m.report(res, err)
	default:
		if msg.Type == tea.KeyRunes {
			m.quickAddInput.SetValue(m.quickAddInput.Value() + string(msg.Runes))
		} else {
			m.quickAddInput, _ = m.quickAddInput.Update(msg)
		}
		m.QuickAdd.Input = m.quickAddInput.Value()
	}
	return m
}

func (m *Model) closeQuickAdd() {
	m.QuickAdd = QuickAddState{}
	m.quickAddInput.SetValue("")
	m.quickAddInput.Blur()
}

func (m *Model) addTask(a commands.AddArgs) (commands.Result, error) {
	cat, err := model.ParseCategory(a.Category)
	if err != nil {
		return commands.Result{}, &model.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a category", a.Category), Err: err}
	}
	task, err := m.tracker.Add(m.ctx, model.Draft{
		Title:    a.Title,
		Category: cat,
		Date:     m.SelectedDate,
		Time:     a.Time,
		Points:   a.Points,
	})
	if task.ID == "" {
		return commands.Result{}, err
	}
	m.refreshDay()
	m.selectTask(task.ID)
	return commands.Result{Message: fmt.Sprintf("added %s at %s (%d pts)", task.DisplayTitle(), task.Time, task.Points)}, err
}

func (m *Model) toggleTask(id string) (commands.Result, error) {
	task, ok, err := m.tracker.Toggle(m.ctx, id)
	m.refreshDay()
	if !ok {
		return commands.Result{Message: "no such task: " + id}, err
	}
	if task.Completed {
		return commands.Result{Message: fmt.Sprintf("done: %s (+%d)", task.DisplayTitle(), task.Points)}, err
	}
	return commands.Result{Message: fmt.Sprintf("reopened: %s (-%d)", task.DisplayTitle(), task.Points)}, err
}

func (m *Model) deleteTask(id string) (commands.Result, error) {
	task, ok, err := m.tracker.Delete(m.ctx, id)
	m.refreshDay()
	if !ok {
		return commands.Result{Message: "no such task: " + id}, err
	}
	return commands.Result{Message: fmt.Sprintf("deleted %s, press u to undo", task.DisplayTitle())}, err
}

func (m *Model) undoDelete() (commands.Result, error) {
	task, ok, err := m.tracker.Undo(m.ctx)
	if !ok {
		return commands.Result{Message: "nothing to undo"}, err
	}
	m.goToDate(task.Date)
	m.selectTask(task.ID)
	return commands.Result{Message: "restored " + task.DisplayTitle()}, err
}

// undoExpiryCmd fires once the pending deletion can no longer be undone.
func (m Model) undoExpiryCmd() tea.Cmd {
	_, expires, ok := m.tracker.UndoDeadline()
	if !ok {
		return nil
	}
	wait := expires.Sub(m.now()) + 10*time.Millisecond
	return tea.Tick(wait, func(time.Time) tea.Msg { return UndoExpiredMsg{} })
}

// report shows the outcome of a mutation. A persistence failure still leaves
// the change applied in memory, so the message is kept in the log.
func (m *Model) report(res commands.Result, err error) {
	if err != nil {
		if res.Message != "" && errors.Is(err, model.ErrPersistence) {
			m.notify("Info", res.Message, "info")
		}
		m.setError(err)
		return
	}
	m.Status = StatusBar{Text: res.Message}
}

func (m *Model) setFilter(f model.Filter) {
	m.Day.Filter = f
	m.Day.Cursor = 0
	m.refreshDay()
}

func (m *Model) refreshDay() {
	m.Day.Items = m.tracker.Query(m.SelectedDate, m.Day.Filter)
	if m.Day.Cursor >= len(m.Day.Items) {
		m.Day.Cursor = len(m.Day.Items) - 1
	}
	if m.Day.Cursor < 0 {
		m.Day.Cursor = 0
	}
	m.syncSelectedTaskToDayCursor()
}

func (m *Model) goToDate(day string) {
	if day == m.SelectedDate {
		m.refreshDay()
		return
	}
	m.SelectedDate = day
	m.Day.Cursor = 0
	m.refreshDay()
}

func (m *Model) shiftSelectedDate(days int) {
	day, err := model.ParseDateKey(m.SelectedDate, m.tracker.Location())
	if err != nil {
		m.goToDate(m.tracker.Today())
		return
	}
	m.goToDate(model.ShiftDateKey(day, days))
}

func (m *Model) selectTask(id string) {
	for i, item := range m.Day.Items {
		if item.ID == id {
			m.Day.Cursor = i
			m.SelectedTaskID = id
			return
		}
	}
}

func (m *Model) syncSelectedTaskToDayCursor() {
	if selected, ok := m.currentDayItem(); ok {
		m.SelectedTaskID = selected.ID
		return
	}
	m.SelectedTaskID = ""
}

func (m Model) currentDayItem() (model.Task, bool) {
	if len(m.Day.Items) == 0 {
		return model.Task{}, false
	}
	if m.Day.Cursor < 0 || m.Day.Cursor >= len(m.Day.Items) {
		return model.Task{}, false
	}
	return m.Day.Items[m.Day.Cursor], true
}

func (m Model) renderDayView() string {
	now := m.now().In(m.tracker.Location())
	items := make([]views.DayItemData, 0, len(m.Day.Items))
	for _, t := range m.Day.Items {
		overdue := false
		if !t.Completed {
			if at, err := t.Deadline(m.tracker.Location()); err == nil && at.Before(now) {
				overdue = true
			}
		}
		items = append(items, views.DayItemData{
			ID:        t.ID,
			Title:     t.DisplayTitle(),
			Category:  t.Category.Label(),
			Time:      t.Time,
			Points:    t.Points,
			Completed: t.Completed,
			Overdue:   overdue,
		})
	}
	return views.RenderDayPanel(views.DayPanelData{
		Date:         m.SelectedDate,
		IsToday:      m.SelectedDate == m.tracker.Today(),
		ListView:     m.dayList.View(),
		Items:        items,
		SelectedID:   m.SelectedTaskID,
		QuickAddView: m.renderQuickAdd(),
		Filter:       filterLabel(m.Day.Filter),
	})
}

func filterLabel(f model.Filter) string {
	if f.IsZero() {
		return ""
	}
	return f.String()
}

func (m Model) renderQuickAdd() string {
	if !m.QuickAdd.Active {
		return ""
	}
	return m.quickAddInput.View()
}

func (m Model) renderProgressPane() string {
	p := m.tracker.Progress()
	return views.RenderProgressPanel(views.ProgressPanelData{
		DayDone:      p.Day.Completed,
		DayTotal:     p.Day.Total,
		DayPercent:   int(p.Day.Percent() * 100),
		WeekDone:     p.Week.Completed,
		WeekTotal:    p.Week.Total,
		WeekPercent:  int(p.Week.Percent() * 100),
		DayBarView:   m.focusProgress.ViewAs(p.Day.Percent()),
		WeekBarView:  m.focusProgress.ViewAs(p.Week.Percent()),
		OverdueCount: len(m.Overdue),
	})
}
