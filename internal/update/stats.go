package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) handleStatsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		m.badgeViewport.ScrollUp(1)
	case "down", "j":
		m.badgeViewport.ScrollDown(1)
	}
	return m
}

func (m Model) renderStatsView() string {
	st := m.tracker.Stats()
	week := m.tracker.Week()
	return views.RenderStatsPanel(views.StatsPanelData{
		TotalPoints: st.TotalPoints,
		TotalTasks:  st.TotalTasks,
		Streak:      st.Streak,
		WeekPoints:  week.Points,
		WeekDone:    week.Completed,
		TableView:   m.weekTable.View(),
	})
}

func (m Model) renderBadgesPane() string {
	return "badges:\n" + m.badgeViewport.View()
}

func (m Model) badgeMarkdown() string {
	statuses := m.tracker.Badges()
	data := make([]views.BadgeData, 0, len(statuses))
	for _, s := range statuses {
		data = append(data, views.BadgeData{
			Name:        s.Badge.Name,
			Description: s.Badge.Description,
			Earned:      s.Earned,
		})
	}
	return views.BadgeMarkdown(data)
}
