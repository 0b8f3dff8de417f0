// Package focus implements the work/break countdown as an explicit state
// machine advanced one second at a time by an external driver.
package focus

import (
	"fmt"
	"time"
)

type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

func (m Mode) Label() string {
	switch m {
	case ModeShortBreak:
		return "Short break"
	case ModeLongBreak:
		return "Long break"
	default:
		return "Focus"
	}
}

type Durations struct {
	Work           time.Duration
	ShortBreak     time.Duration
	LongBreak      time.Duration
	LongBreakEvery int
}

func DefaultDurations() Durations {
	return Durations{
		Work:           25 * time.Minute,
		ShortBreak:     5 * time.Minute,
		LongBreak:      15 * time.Minute,
		LongBreakEvery: 4,
	}
}

func (d Durations) normalized() Durations {
	def := DefaultDurations()
	if d.Work < time.Second {
		d.Work = def.Work
	}
	if d.ShortBreak < time.Second {
		d.ShortBreak = def.ShortBreak
	}
	if d.LongBreak < time.Second {
		d.LongBreak = def.LongBreak
	}
	if d.LongBreakEvery <= 0 {
		d.LongBreakEvery = def.LongBreakEvery
	}
	return d
}

func (d Durations) For(m Mode) int {
	switch m {
	case ModeShortBreak:
		return int(d.ShortBreak / time.Second)
	case ModeLongBreak:
		return int(d.LongBreak / time.Second)
	default:
		return int(d.Work / time.Second)
	}
}

type State struct {
	Mode          Mode
	Remaining     int
	Total         int
	Running       bool
	SessionsToday int
	BoundTaskID   string
	AutoComplete  bool
	Generation    uint64
}

// Completion is the output of the transition that takes Remaining to zero.
type Completion struct {
	Mode         Mode
	Next         Mode
	Sessions     int
	BoundTaskID  string
	AutoComplete bool
}

// CompletesTask reports whether the finished cycle should mark its bound task
// done.
func (c Completion) CompletesTask() bool {
	return c.Mode == ModeWork && c.AutoComplete && c.BoundTaskID != ""
}

// Timer is not safe for concurrent use.
type Timer struct {
	durations    Durations
	mode         Mode
	remaining    int
	running      bool
	sessions     int
	boundTaskID  string
	autoComplete bool
	gen          uint64
}

func New(d Durations) *Timer {
	d = d.normalized()
	return &Timer{
		durations: d,
		mode:      ModeWork,
		remaining: d.For(ModeWork),
	}
}

func (t *Timer) Durations() Durations {
	return t.durations
}

// Start begins counting down. It returns the generation ticks must carry and
// false when the timer was already running.
func (t *Timer) Start() (uint64, bool) {
	if t.running {
		return t.gen, false
	}
	if t.remaining <= 0 {
		t.remaining = t.durations.For(t.mode)
	}
	t.running = true
	t.gen++
	return t.gen, true
}

func (t *Timer) Pause() bool {
	if !t.running {
		return false
	}
	t.running = false
	t.gen++
	return true
}

func (t *Timer) Reset() {
	t.running = false
	t.mode = ModeWork
	t.remaining = t.durations.For(ModeWork)
	t.sessions = 0
	t.gen++
}

// ResetSessions clears the daily session counter without touching the
// current countdown.
func (t *Timer) ResetSessions() {
	t.sessions = 0
}

// TickFor advances the timer only when gen matches the current run. Ticks
// scheduled before a pause or reset are dropped.
func (t *Timer) TickFor(gen uint64) (Completion, bool) {
	if gen != t.gen {
		return Completion{}, false
	}
	return t.Tick()
}

// Tick advances one second. The boolean reports a cycle completion, after
// which the timer is stopped in the next mode with a full countdown.
func (t *Timer) Tick() (Completion, bool) {
	if !t.running {
		return Completion{}, false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		return Completion{}, false
	}

	c := Completion{
		Mode:         t.mode,
		BoundTaskID:  t.boundTaskID,
		AutoComplete: t.autoComplete,
	}
	t.running = false
	t.gen++
	if t.mode == ModeWork {
		t.sessions++
		if t.sessions%t.durations.LongBreakEvery == 0 {
			t.mode = ModeLongBreak
		} else {
			t.mode = ModeShortBreak
		}
	} else {
		t.mode = ModeWork
	}
	t.remaining = t.durations.For(t.mode)
	c.Next = t.mode
	c.Sessions = t.sessions
	return c, true
}

// Bind holds only the task id; a deleted task turns auto-complete into a
// no-op.
func (t *Timer) Bind(taskID string) {
	t.boundTaskID = taskID
}

func (t *Timer) Unbind() {
	t.boundTaskID = ""
}

func (t *Timer) SetAutoComplete(on bool) {
	t.autoComplete = on
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Generation() uint64 {
	return t.gen
}

func (t *Timer) Snapshot() State {
	return State{
		Mode:          t.mode,
		Remaining:     t.remaining,
		Total:         t.durations.For(t.mode),
		Running:       t.running,
		SessionsToday: t.sessions,
		BoundTaskID:   t.boundTaskID,
		AutoComplete:  t.autoComplete,
		Generation:    t.gen,
	}
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
