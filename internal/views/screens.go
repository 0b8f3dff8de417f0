package views

import (
	"fmt"
	"strings"
)

type DayItemData struct {
	ID        string
	Title     string
	Category  string
	Time      string
	Points    int
	Completed bool
	Overdue   bool
}

type DayPanelData struct {
	Date         string
	IsToday      bool
	ListView     string
	Items        []DayItemData
	SelectedID   string
	QuickAddView string
	Filter       string
}

type ProgressPanelData struct {
	DayDone      int
	DayTotal     int
	DayPercent   int
	WeekDone     int
	WeekTotal    int
	WeekPercent  int
	DayBarView   string
	WeekBarView  string
	OverdueCount int
}

type StatsPanelData struct {
	TotalPoints int
	TotalTasks  int
	Streak      int
	WeekPoints  int
	WeekDone    int
	TableView   string
}

type BadgeData struct {
	Name        string
	Description string
	Earned      bool
}

type FocusPanelData struct {
	TaskTitle     string
	Mode          string
	Timer         string
	Running       bool
	SpinnerView   string
	ProgressView  string
	ProgressPct   int
	SessionsToday int
	AutoComplete  bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	Commands    string
	HelpView    string
}

func RenderDayPanel(data DayPanelData) string {
	var b strings.Builder
	label := data.Date
	if data.IsToday {
		label += " (today)"
	}
	b.WriteString(fmt.Sprintf("day: %s\n", label))
	b.WriteString("actions: [j/k]move [h/l]day [space]done [a]add [d]delete [u]undo [f]focus [c/s/C]filter\n")
	if data.Filter != "" {
		b.WriteString("filter: " + data.Filter + "\n")
	}
	if data.QuickAddView != "" {
		b.WriteString(data.QuickAddView + "\n")
	}
	if len(data.Items) == 0 {
		if data.Filter != "" {
			b.WriteString("\n(no tasks match the filter)")
		} else {
			b.WriteString("\n(no tasks for this day)")
		}
		return b.String()
	}
	b.WriteString(data.ListView + "\n\n")
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s [%s] %dpts", cursor, checkbox(item), item.Time, item.Title, item.Category, item.Points))
		if item.Overdue {
			b.WriteString(" " + errorStyle.Render("overdue"))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func checkbox(item DayItemData) string {
	if item.Completed {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

func RenderProgressPanel(data ProgressPanelData) string {
	var b strings.Builder
	b.WriteString("progress:\n")
	b.WriteString(fmt.Sprintf("today: %d/%d (%d%%)\n%s\n", data.DayDone, data.DayTotal, data.DayPercent, data.DayBarView))
	b.WriteString(fmt.Sprintf("week:  %d/%d (%d%%)\n%s\n", data.WeekDone, data.WeekTotal, data.WeekPercent, data.WeekBarView))
	if data.OverdueCount > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("overdue: %d", data.OverdueCount)) + "\n")
	}
	return b.String()
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("points: %d\n", data.TotalPoints))
	b.WriteString(fmt.Sprintf("tasks completed: %d\n", data.TotalTasks))
	b.WriteString(fmt.Sprintf("streak: %d day(s)\n", data.Streak))
	b.WriteString(fmt.Sprintf("\nlast 7 days: %d done, %d pts\n", data.WeekDone, data.WeekPoints))
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

// BadgeMarkdown lists the catalog with earned badges checked.
func BadgeMarkdown(badges []BadgeData) string {
	if len(badges) == 0 {
		return "_No badges_"
	}
	var b strings.Builder
	for _, badge := range badges {
		mark := "[ ]"
		if badge.Earned {
			mark = "[x]"
		}
		b.WriteString(fmt.Sprintf("- %s **%s** %s\n", mark, badge.Name, badge.Description))
	}
	return b.String()
}

func RenderFocusPanel(data FocusPanelData) string {
	var b strings.Builder
	b.WriteString("focus:\n")
	if data.TaskTitle != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.TaskTitle))
	} else {
		b.WriteString("task: (none bound)\n")
	}
	b.WriteString(fmt.Sprintf("mode: %s\n", strings.ToUpper(data.Mode)))
	state := "paused"
	if data.Running {
		state = strings.TrimSpace(data.SpinnerView + " running")
	}
	b.WriteString(fmt.Sprintf("timer: %s %s\n", data.Timer, state))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("sessions today: %d\n", data.SessionsToday))
	auto := "off"
	if data.AutoComplete {
		auto = "on"
	}
	b.WriteString(fmt.Sprintf("auto-complete: %s\n", auto))
	b.WriteString("actions: [space]start/pause [r]reset [b]unbind [a]auto-complete")
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: /%s", input)
}

func RenderNotification(level, title, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if title == "" {
		return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
	}
	return fmt.Sprintf("notification: [%s] %s: %s", strings.ToUpper(level), title, body)
}

func RenderOverdue(titles []string) string {
	if len(titles) == 0 {
		return ""
	}
	const shown = 3
	lines := []string{errorStyle.Render(fmt.Sprintf("overdue (%d):", len(titles)))}
	for i, t := range titles {
		if i == shown {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(titles)-shown))
			break
		}
		lines = append(lines, "  "+t)
	}
	return strings.Join(lines, "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp:\n%s view:\n%s\n%s\ncommands:\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
		data.Commands,
	)
}
