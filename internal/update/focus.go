package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/commands"
	"github.com/sandeepkv93/streakd/internal/focus"
	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) handleFocusKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ", "s":
		if m.tracker.Focus().Running {
			m.tracker.PauseFocus()
			m.Status = StatusBar{Text: "focus paused"}
			return m, nil
		}
		return m.startFocus()
	case "r":
		m.tracker.ResetFocus()
		m.Status = StatusBar{Text: "focus reset"}
	case "b":
		m.tracker.UnbindFocus()
		m.Status = StatusBar{Text: "focus unbound"}
	case "a":
		on := !m.tracker.Focus().AutoComplete
		m.tracker.SetAutoComplete(on)
		m.Status = StatusBar{Text: fmt.Sprintf("auto-complete %s", onOff(on))}
	}
	return m, nil
}

func (m Model) startFocus() (Model, tea.Cmd) {
	gen, started := m.tracker.StartFocus()
	if !started {
		return m, nil
	}
	m.Status = StatusBar{Text: "focus running"}
	return m, tea.Batch(focusTickCmd(gen), m.focusSpinner.Tick)
}

// onFocusTick drops ticks from an earlier run; a pause or reset bumps the
// generation so at most one tick chain is ever live.
func (m Model) onFocusTick(gen uint64) (tea.Model, tea.Cmd) {
	c, done, err := m.tracker.FocusTick(m.ctx, gen)
	if err != nil {
		m.setError(err)
	}
	if done {
		m.refreshDay()
		if c.Mode == focus.ModeWork {
			m.Status = StatusBar{Text: fmt.Sprintf("session %d complete, %s next", c.Sessions, c.Next.Label())}
		} else {
			m.Status = StatusBar{Text: "break over, press space for the next session"}
		}
		return m, nil
	}
	st := m.tracker.Focus()
	if !st.Running || st.Generation != gen {
		return m, nil
	}
	return m, focusTickCmd(gen)
}

func (m *Model) bindFocus(id string) (commands.Result, error) {
	task, err := m.tracker.BindFocus(id)
	if err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: "focus bound to " + task.DisplayTitle()}, nil
}

// focusCommand runs the palette's focus actions.
func (m *Model) focusCommand(a commands.FocusArgs) (commands.Result, tea.Cmd, error) {
	switch a.Action {
	case commands.FocusBind:
		res, err := m.bindFocus(a.TaskID)
		return res, nil, err
	case commands.FocusUnbind:
		m.tracker.UnbindFocus()
		return commands.Result{Message: "focus unbound"}, nil, nil
	case commands.FocusStart:
		next, cmd := m.startFocus()
		*m = next
		if cmd == nil {
			return commands.Result{Message: "focus already running"}, nil, nil
		}
		return commands.Result{Message: "focus running"}, cmd, nil
	case commands.FocusPause:
		if !m.tracker.PauseFocus() {
			return commands.Result{Message: "focus not running"}, nil, nil
		}
		return commands.Result{Message: "focus paused"}, nil, nil
	case commands.FocusReset:
		m.tracker.ResetFocus()
		return commands.Result{Message: "focus reset"}, nil, nil
	case commands.FocusAuto:
		m.tracker.SetAutoComplete(a.On)
		return commands.Result{Message: "auto-complete " + onOff(a.On)}, nil, nil
	}
	return commands.Result{}, nil, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown focus action %q", a.Action)}
}

func (m Model) renderFocusView() string {
	st := m.tracker.Focus()
	progress := 0.0
	if st.Total > 0 {
		progress = float64(st.Total-st.Remaining) / float64(st.Total)
	}
	title := ""
	if st.BoundTaskID != "" {
		if task, ok := m.tracker.Find(st.BoundTaskID); ok {
			title = task.DisplayTitle()
		} else {
			title = "(deleted task)"
		}
	}
	spin := ""
	if st.Running {
		spin = m.focusSpinner.View()
	}
	return views.RenderFocusPanel(views.FocusPanelData{
		TaskTitle:     title,
		Mode:          st.Mode.Label(),
		Timer:         focus.FormatRemaining(st.Remaining),
		Running:       st.Running,
		SpinnerView:   spin,
		ProgressView:  m.focusProgress.ViewAs(progress),
		ProgressPct:   int(progress * 100),
		SessionsToday: st.SessionsToday,
		AutoComplete:  st.AutoComplete,
	})
}

func focusTickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{Gen: gen} })
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
