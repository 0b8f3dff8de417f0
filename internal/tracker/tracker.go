// Package tracker is the application context: it owns the task store, the
// stats record, the focus timer, the undo slot and persistence, and applies
// every mutation together with its derived recomputation under one lock.
package tracker

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/streakd/internal/badge"
	"github.com/sandeepkv93/streakd/internal/focus"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/notify"
	"github.com/sandeepkv93/streakd/internal/stats"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/store"
)

const DefaultUndoWindow = 8 * time.Second

type Deps struct {
	Persistence  storage.Persistence
	Notifier     *notify.Scheduler
	Clock        func() time.Time
	Location     *time.Location
	Durations    focus.Durations
	AutoComplete bool
	UndoWindow   time.Duration
	Logger       *log.Logger
}

type pendingUndo struct {
	removed store.Removed
	expires time.Time
}

type Tracker struct {
	mu         sync.Mutex
	store      *store.Store
	stats      model.Stats
	timer      *focus.Timer
	notifier   *notify.Scheduler
	persist    storage.Persistence
	now        func() time.Time
	loc        *time.Location
	undo       *pendingUndo
	undoWindow time.Duration
	catalog    []badge.Badge
	logger     *log.Logger

	subMu   sync.RWMutex
	subs    []subscription
	nextSub int
}

// New loads the persisted documents and builds the tracker around them.
// Unreadable documents start empty; only a failing storage backend is an
// error.
func New(ctx context.Context, deps Deps) (*Tracker, error) {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.UndoWindow <= 0 {
		deps.UndoWindow = DefaultUndoWindow
	}
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewScheduler(nil, nil, notify.Options{Logger: deps.Logger})
	}

	snap := storage.EmptySnapshot()
	if deps.Persistence != nil {
		loaded, err := deps.Persistence.Load(ctx)
		if err != nil {
			return nil, &model.PersistenceError{Op: "load", Err: err}
		}
		snap = loaded
	}
	for _, doc := range snap.Discarded {
		deps.Logger.Warn("discarded unreadable document", "doc", doc)
	}

	st, dropped := store.FromCollection(snap.Tasks, deps.Location)
	if dropped > 0 {
		deps.Logger.Warn("dropped tasks with repeated ids", "count", dropped)
	}

	timer := focus.New(deps.Durations)
	timer.SetAutoComplete(deps.AutoComplete)

	t := &Tracker{
		store:      st,
		stats:      snap.Stats.Normalize(),
		timer:      timer,
		notifier:   deps.Notifier,
		persist:    deps.Persistence,
		now:        deps.Clock,
		loc:        deps.Location,
		undoWindow: deps.UndoWindow,
		catalog:    badge.Catalog(),
		logger:     deps.Logger,
	}
	t.stats.Streak = stats.ComputeStreak(t.store.Collection(), t.clock())
	t.stats, _ = badge.Evaluate(t.stats, t.stats.Streak, t.catalog)
	t.scheduleUpcoming()
	t.logger.Info("tracker ready", "tasks", t.store.Len(), "points", t.stats.TotalPoints, "streak", t.stats.Streak)
	return t, nil
}

func (t *Tracker) clock() time.Time {
	return t.now().In(t.loc)
}

func (t *Tracker) Today() string {
	return model.DateKey(t.clock())
}

func (t *Tracker) Location() *time.Location {
	return t.loc
}

// mutation collects what a locked operation wants to happen once the lock is
// released.
type mutation struct {
	events  []Event
	notices []notice
	saveErr error
}

type notice struct {
	title string
	body  string
}

func (m *mutation) emit(ev Event) {
	m.events = append(m.events, ev)
}

// applyDelta folds delta into the stats, recomputes the streak and evaluates
// badges. Caller holds t.mu.
func (t *Tracker) applyDelta(m *mutation, delta model.Delta) {
	at := t.clock()
	t.stats = stats.Apply(t.stats, delta)
	t.stats.Streak = stats.ComputeStreak(t.store.Collection(), at)
	var unlocked []badge.Badge
	t.stats, unlocked = badge.Evaluate(t.stats, t.stats.Streak, t.catalog)
	for _, b := range unlocked {
		m.emit(Event{Kind: EventBadgeUnlocked, At: at, Badge: b})
		m.notices = append(m.notices, notice{title: "Badge unlocked: " + b.Name, body: b.Description})
		t.logger.Info("badge unlocked", "badge", b.ID)
	}
}

// save writes both documents. Caller holds t.mu. A failure is recorded on m
// and never rolls back the in-memory state.
func (t *Tracker) save(ctx context.Context, m *mutation) {
	if t.persist == nil {
		return
	}
	snap := storage.Snapshot{Tasks: t.store.Collection(), Stats: t.stats.Clone()}
	if err := t.persist.Save(ctx, snap); err != nil {
		perr := &model.PersistenceError{Op: "save", Err: err}
		m.saveErr = perr
		m.emit(Event{Kind: EventPersistenceFailed, At: t.clock(), Err: perr})
		t.logger.Error("save failed", "err", err)
	}
}

// finish runs after t.mu is released: it publishes events and shows
// notifications.
func (t *Tracker) finish(ctx context.Context, m *mutation) error {
	t.publish(m.events)
	for _, n := range m.notices {
		_ = t.notifier.NotifyNow(ctx, n.title, n.body)
	}
	return m.saveErr
}

func (t *Tracker) Stats() model.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Clone()
}

type BadgeStatus struct {
	Badge  badge.Badge
	Earned bool
}

func (t *Tracker) Badges() []BadgeStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]BadgeStatus, 0, len(t.catalog))
	for _, b := range t.catalog {
		out = append(out, BadgeStatus{Badge: b, Earned: t.stats.HasBadge(b.ID)})
	}
	return out
}

// Week reports the last seven days, today inclusive.
func (t *Tracker) Week() stats.Rollup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return stats.LastNDays(t.store.Collection(), t.clock(), 7)
}

func (t *Tracker) Progress() stats.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return stats.ComputeProgress(t.store.Collection(), t.clock())
}

// Rollover is called when the local date changes: the streak is recomputed
// against the new day and the daily focus session count starts over.
func (t *Tracker) Rollover(ctx context.Context) error {
	var m mutation
	t.mu.Lock()
	at := t.clock()
	t.stats.Streak = stats.ComputeStreak(t.store.Collection(), at)
	t.timer.ResetSessions()
	m.emit(Event{Kind: EventDayRolledOver, At: at})
	t.save(ctx, &m)
	t.mu.Unlock()
	t.logger.Info("day rolled over", "today", model.DateKey(at), "streak", t.Stats().Streak)
	return t.finish(ctx, &m)
}
