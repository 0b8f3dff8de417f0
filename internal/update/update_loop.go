package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForReminderCmd(m.reminders), waitForTrackerEventCmd(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		if m.QuickAdd.Active {
			return m.handleQuickAddKey(typed), nil
		}

		switch typed.String() {
		case "/", ":":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Day:
			m.CurrentView = ViewDay
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Focus:
			m.CurrentView = ViewFocus
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewDay:
			return m.handleDayKey(typed)
		case ViewStats:
			return m.handleStatsKey(typed), nil
		case ViewFocus:
			return m.handleFocusKey(typed)
		}
	case spinner.TickMsg:
		if m.tracker.Focus().Running {
			var cmd tea.Cmd
			m.focusSpinner, cmd = m.focusSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, m.Status.level())
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.setError(typed.Err)
		return m, nil
	case FocusTickMsg:
		return m.onFocusTick(typed.Gen)
	case UndoExpiredMsg:
		if m.tracker.ExpireUndo() {
			m.Status = StatusBar{Text: "deletion is final"}
		}
		return m, nil
	case TrackerEventMsg:
		m.onTrackerEvent(typed.Event)
		return m, waitForTrackerEventCmd(m.events)
	case ReminderDueMsg:
		m.onReminder(typed.Event)
		return m, waitForReminderCmd(m.reminders)
	case RolloverMsg:
		m.onRollover()
		return m, nil
	case OverdueSweepMsg:
		m.Overdue = m.tracker.Overdue()
		if len(m.Overdue) > 0 {
			m.Status = StatusBar{Text: fmt.Sprintf("%d overdue task(s)", len(m.Overdue))}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	m.syncBubbleData()
	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewDay:
		leftPane = m.renderDayView()
		rightPane = m.renderProgressPane() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewStats:
		leftPane = m.renderStatsView()
		rightPane = m.renderBadgesPane() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewFocus:
		leftPane = m.renderFocusView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}
	notificationView := strings.TrimSpace(strings.Join([]string{
		strings.TrimSpace(m.renderOverdueView()),
		strings.TrimSpace(m.renderNotificationsView()),
	}, "\n"))

	st := m.tracker.Stats()
	return views.RenderFrame(views.Frame{
		Views:        []string{string(ViewDay), string(ViewStats), string(ViewFocus)},
		Active:       string(m.CurrentView),
		Date:         m.SelectedDate,
		IsToday:      m.SelectedDate == m.tracker.Today(),
		Points:       st.TotalPoints,
		Streak:       st.Streak,
		Left:         leftPane,
		Right:        rightPane,
		Status:       m.Status.Text,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Footer:       fmt.Sprintf("keys: %s day | %s stats | %s focus | / cmd | %s help | %s quit", m.Keys.Day, m.Keys.Stats, m.Keys.Focus, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewDay, ViewStats, ViewFocus:
		return true
	default:
		return false
	}
}

func (m *Model) setError(err error) {
	m.LastError = err
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Error", err.Error(), "error")
		m.logger.Warn("operation failed", "err", err)
	}
}
