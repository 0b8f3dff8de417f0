package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Frame is everything drawn around the two panes.
type Frame struct {
	Views   []string
	Active  string
	Date    string
	IsToday bool
	Points  int
	Streak  int

	Left  string
	Right string

	Status       string
	StatusError  bool
	Notification string
	Footer       string
}

var (
	brandStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	streakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(58)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func RenderFrame(f Frame) string {
	lines := []string{
		renderHeader(f),
		lipgloss.JoinHorizontal(lipgloss.Top, paneStyle.Render(f.Left), paneStyle.Render(f.Right)),
	}
	if f.Status != "" {
		if f.StatusError {
			lines = append(lines, errorStyle.Render("status: error: "+f.Status))
		} else {
			lines = append(lines, statusStyle.Render("status: "+f.Status))
		}
	}
	if f.Notification != "" {
		lines = append(lines, lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Render(f.Notification))
	}
	if f.Footer != "" {
		lines = append(lines, footerStyle.Render(f.Footer))
	}
	return strings.Join(lines, "\n")
}

// renderHeader draws "streakd  [Day] Stats Focus  2026-02-11 (today)  120 pts  streak 3".
func renderHeader(f Frame) string {
	tabs := make([]string, 0, len(f.Views))
	for _, v := range f.Views {
		if v == f.Active {
			tabs = append(tabs, activeStyle.Render("["+v+"]"))
			continue
		}
		tabs = append(tabs, tabStyle.Render(v))
	}
	date := f.Date
	if f.IsToday {
		date += " (today)"
	}
	return strings.Join([]string{
		brandStyle.Render("streakd"),
		strings.Join(tabs, " "),
		date,
		scoreStyle.Render(fmt.Sprintf("%d pts", f.Points)),
		streakStyle.Render(fmt.Sprintf("streak %d", f.Streak)),
	}, "  ")
}

// RenderMarkdown falls back to the raw text when glamour cannot render it.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
