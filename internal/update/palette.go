package update

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/commands"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/store"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: m.addTask,
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			return m.toggleTask(a.ID)
		},
		Remove: func(a commands.TargetArgs) (commands.Result, error) {
			res, err := m.deleteTask(a.ID)
			follow = m.undoExpiryCmd()
			return res, err
		},
		Undo: m.undoDelete,
		Edit: m.editTask,
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			day, err := commands.ResolveDate(a.Target, m.now().In(m.tracker.Location()))
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewDay
			m.goToDate(day)
			return commands.Result{Message: "showing " + day}, nil
		},
		Focus: func(a commands.FocusArgs) (commands.Result, error) {
			res, cmd, err := m.focusCommand(a)
			follow = cmd
			return res, err
		},
		Import: m.importFile,
		Export: m.exportFile,
		Filter: m.applyFilter,
	})
	if err != nil {
		m.report(res, err)
		m.notify("Command Failed", err.Error(), "error")
		return m, follow
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, follow
}

func (m *Model) applyFilter(a commands.FilterArgs) (commands.Result, error) {
	f := model.Filter{Search: strings.TrimSpace(a.Search)}
	if a.Category != "" {
		cat, err := model.ParseCategory(a.Category)
		if err != nil {
			return commands.Result{}, &model.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a category", a.Category), Err: err}
		}
		f.Category = cat
	}
	status, err := model.ParseStatus(a.Status)
	if err != nil {
		return commands.Result{}, err
	}
	f.Status = status
	m.CurrentView = ViewDay
	m.setFilter(f)
	return commands.Result{Message: "filter: " + f.String()}, nil
}

func (m *Model) editTask(a commands.EditArgs) (commands.Result, error) {
	var p store.Patch
	for _, f := range a.Fields {
		value := f.Value
		switch f.Name {
		case "title":
			p.Title = &value
		case "category":
			cat, err := model.ParseCategory(value)
			if err != nil {
				return commands.Result{}, &model.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a category", value), Err: err}
			}
			p.Category = &cat
		case "date":
			p.Date = &value
		case "time":
			p.Time = &value
		case "points":
			n, err := strconv.Atoi(value)
			if err != nil {
				return commands.Result{}, &model.ValidationError{Field: "points", Reason: fmt.Sprintf("%q is not a number", value), Err: err}
			}
			p.Points = &n
		}
	}
	task, err := m.tracker.Edit(m.ctx, a.ID, p)
	if task.ID == "" {
		return commands.Result{}, err
	}
	m.refreshDay()
	return commands.Result{Message: fmt.Sprintf("updated %s (%s %s, %d pts)", task.DisplayTitle(), task.Date, task.Time, task.Points)}, err
}

func (m *Model) importFile(a commands.PathArgs) (commands.Result, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return commands.Result{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	n, err := m.tracker.Import(m.ctx, f)
	m.refreshDay()
	m.Overdue = m.tracker.Overdue()
	if err != nil && n == 0 {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", n, a.Path)}, err
}

// exportFile writes through a temp file so an interrupted export never leaves
// a truncated document behind.
func (m *Model) exportFile(a commands.PathArgs) (commands.Result, error) {
	dir := filepath.Dir(a.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return commands.Result{}, err
		}
	}
	tmp := a.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return commands.Result{}, err
	}
	if err := m.tracker.Export(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return commands.Result{}, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return commands.Result{}, err
	}
	if err := os.Rename(tmp, a.Path); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{Message: "exported to " + a.Path}, nil
}
