package update

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

type View string

const (
	ViewDay   View = "Day"
	ViewStats View = "Stats"
	ViewFocus View = "Focus"
)

type StatusBar struct {
	Text    string
	IsError bool
}

func (s StatusBar) level() string {
	if s.IsError {
		return "error"
	}
	return "info"
}

type GlobalKeyMap struct {
	Day   string
	Stats string
	Focus string
	Help  string
	Quit  string
}

// trackerEventBuffer bounds the bridge between tracker listeners and the
// update loop. Listeners run inside Update, so a full buffer drops events
// instead of blocking.
const trackerEventBuffer = 32

type Model struct {
	CurrentView    View
	SelectedDate   string
	SelectedTaskID string
	Day            DayState
	Overdue        []model.Task
	Palette        CommandPaletteState
	QuickAdd       QuickAddState
	HelpVisible    bool
	Notifications  []Notification
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	tracker   *tracker.Tracker
	reminders <-chan scheduler.Event
	events    chan tracker.Event
	ctx       context.Context
	logger    *log.Logger
	now       func() time.Time

	dayList       list.Model
	weekTable     table.Model
	quickAddInput textinput.Model
	commandInput  textinput.Model
	focusProgress progress.Model
	focusSpinner  spinner.Model
	helpModel     help.Model
	badgeViewport viewport.Model
}

type DayState struct {
	Items  []model.Task
	Cursor int
	Filter model.Filter
	// today is the date key the view last saw as today.
	today string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type QuickAddState struct {
	Active bool
	Input  string
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// FocusTickMsg carries the timer generation it was scheduled for.
type FocusTickMsg struct {
	Gen uint64
}

type UndoExpiredMsg struct{}

type TrackerEventMsg struct {
	Event tracker.Event
}

type ReminderDueMsg struct {
	Event scheduler.Event
}

// RolloverMsg and OverdueSweepMsg are sent from the wall-clock cron jobs.
type RolloverMsg struct{}

type OverdueSweepMsg struct{}

type Options struct {
	Reminders <-chan scheduler.Event
	Logger    *log.Logger
	Context   context.Context
	Clock     func() time.Time
}

func NewModel(tr *tracker.Tracker, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	m := Model{
		CurrentView:  ViewDay,
		SelectedDate: tr.Today(),
		Keys: GlobalKeyMap{
			Day:   "1",
			Stats: "2",
			Focus: "3",
			Help:  "?",
			Quit:  "q",
		},
		tracker:   tr,
		reminders: opts.Reminders,
		events:    make(chan tracker.Event, trackerEventBuffer),
		ctx:       opts.Context,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	events := m.events
	tr.Subscribe(func(ev tracker.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	m.Day.today = m.SelectedDate
	m.initBubbleComponents()
	m.refreshDay()
	m.Overdue = tr.Overdue()
	m.syncBubbleData()
	return m
}
