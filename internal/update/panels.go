package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/streakd/internal/views"
)

const notificationLogSize = 40

func (m *Model) initBubbleComponents() {
	m.dayList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.dayList.Title = "Tasks"
	m.dayList.SetShowHelp(false)
	// The day filter is applied by the tracker query so cursor and list agree.
	m.dayList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Done", Width: 6},
		{Title: "Tasks", Width: 6},
		{Title: "Points", Width: 8},
	}
	m.weekTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "09:30 study read chapter 3"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.focusProgress = progress.New(progress.WithDefaultGradient())

	m.focusSpinner = spinner.New()
	m.focusSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.badgeViewport = viewport.New(54, 14)
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.Day.Items))
	for _, t := range m.Day.Items {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		items = append(items, listItem{
			title:       fmt.Sprintf("%s %s", mark, t.DisplayTitle()),
			description: fmt.Sprintf("%s | %s | %d pts", t.Time, t.Category.Label(), t.Points),
		})
	}
	m.dayList.SetItems(items)
	if len(items) > 0 {
		m.dayList.Select(m.Day.Cursor)
	}

	week := m.tracker.Week()
	rows := make([]table.Row, 0, len(week.Days))
	for _, d := range week.Days {
		rows = append(rows, table.Row{d.Date, fmt.Sprint(d.Completed), fmt.Sprint(d.Total), fmt.Sprint(d.Points)})
	}
	m.weekTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
	m.quickAddInput.SetValue(m.QuickAdd.Input)

	m.badgeViewport.SetContent(views.RenderMarkdown(m.badgeMarkdown()))
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Title, n.Body)
}

func (m Model) renderOverdueView() string {
	titles := make([]string, 0, len(m.Overdue))
	for _, t := range m.Overdue {
		titles = append(titles, fmt.Sprintf("%s %s %s", t.Date, t.Time, t.DisplayTitle()))
	}
	return views.RenderOverdue(titles)
}

// notify appends to the in-app notification log. System notifications go
// through the tracker's scheduler, not through here.
func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now(),
	})
	if len(m.Notifications) > notificationLogSize {
		m.Notifications = m.Notifications[len(m.Notifications)-notificationLogSize:]
	}
}
