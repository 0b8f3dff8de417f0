package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
)

const (
	DefaultReminderLead = 10 * time.Minute
	DefaultShowTimeout  = 10 * time.Second
)

// Engine is the part of the reminder engine the scheduler needs.
type Engine interface {
	Schedule(ev scheduler.Event) error
	Cancel(id string) bool
}

// Handle identifies one scheduled reminder. The zero Handle is inert.
type Handle struct {
	ID     string
	TaskID string
	FireAt time.Time
}

func (h Handle) Inert() bool { return h.ID == "" }

type Options struct {
	Lead   time.Duration
	Logger *log.Logger
	// Queue > 0 moves Show calls onto a background worker with a queue of
	// that size, so callers never wait on notification I/O. Zero shows
	// synchronously.
	Queue       int
	ShowTimeout time.Duration
}

type delivery struct {
	title string
	body  string
}

type Scheduler struct {
	mu      sync.Mutex
	cap     Capability
	engine  Engine
	lead    time.Duration
	timeout time.Duration
	logger  *log.Logger
	pending map[string]Handle

	qmu    sync.RWMutex
	queue  chan delivery
	closed bool
	done   chan struct{}
}

func NewScheduler(c Capability, engine Engine, opts Options) *Scheduler {
	if opts.Lead <= 0 {
		opts.Lead = DefaultReminderLead
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.ShowTimeout <= 0 {
		opts.ShowTimeout = DefaultShowTimeout
	}
	if c == nil {
		c = NewRecorder(PermissionDenied)
	}
	s := &Scheduler{
		cap:     c,
		engine:  engine,
		lead:    opts.Lead,
		timeout: opts.ShowTimeout,
		logger:  opts.Logger,
		pending: make(map[string]Handle),
	}
	if opts.Queue > 0 {
		s.queue = make(chan delivery, opts.Queue)
		s.done = make(chan struct{})
		go s.deliverLoop()
	}
	return s
}

func (s *Scheduler) deliverLoop() {
	defer close(s.done)
	for d := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.cap.Show(ctx, d.title, d.body); err != nil {
			s.logger.Warn("notification failed", "title", d.title, "err", err)
		}
		cancel()
	}
}

// show hands the notification to the worker when there is one. A full queue
// drops the notification.
func (s *Scheduler) show(ctx context.Context, title, body string) error {
	if s.queue == nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.cap.Show(ctx, title, body)
	}
	s.qmu.RLock()
	defer s.qmu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.queue <- delivery{title: title, body: body}:
	default:
		s.logger.Warn("notification queue full", "title", title)
	}
	return nil
}

// Close stops the delivery worker after it has drained the queue.
func (s *Scheduler) Close() {
	if s.queue == nil {
		return
	}
	s.qmu.Lock()
	if s.closed {
		s.qmu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.qmu.Unlock()
	<-s.done
}

func (s *Scheduler) IsAllowed() bool {
	return s.cap.Permission() == PermissionGranted
}

func (s *Scheduler) Permission() Permission {
	return s.cap.Permission()
}

// ScheduleDeadlineReminder arranges a reminder lead before the task's
// deadline. It returns an inert handle when notifications are not allowed,
// the task is already done, or the reminder time has passed. A task has at
// most one pending reminder; scheduling again replaces it.
func (s *Scheduler) ScheduleDeadlineReminder(task model.Task, now time.Time) Handle {
	if s.engine == nil || task.Completed || !s.IsAllowed() {
		return Handle{}
	}
	deadline, err := task.Deadline(now.Location())
	if err != nil {
		s.logger.Warn("skip reminder", "task", task.ID, "err", err)
		return Handle{}
	}
	fireAt := deadline.Add(-s.lead)
	if !fireAt.After(now) {
		s.CancelTask(task.ID)
		return Handle{}
	}

	h := Handle{ID: uuid.NewString(), TaskID: task.ID, FireAt: fireAt}
	ev := scheduler.Event{
		ID:     h.ID,
		TaskID: task.ID,
		Kind:   scheduler.KindDeadline,
		Title:  "Task due soon",
		Body:   fmt.Sprintf("%s at %s", task.DisplayTitle(), task.Time),
		FireAt: fireAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.pending[task.ID]; ok {
		s.engine.Cancel(prev.ID)
	}
	if err := s.engine.Schedule(ev); err != nil {
		delete(s.pending, task.ID)
		s.logger.Warn("schedule reminder failed", "task", task.ID, "err", err)
		return Handle{}
	}
	s.pending[task.ID] = h
	s.logger.Debug("reminder scheduled", "task", task.ID, "at", fireAt.Format(time.DateTime))
	return h
}

// Cancel is idempotent. A handle replaced by a newer reminder for the same
// task no longer cancels anything.
func (s *Scheduler) Cancel(h Handle) {
	if h.Inert() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.pending[h.TaskID]
	if !ok || cur.ID != h.ID {
		return
	}
	delete(s.pending, h.TaskID)
	if s.engine != nil {
		s.engine.Cancel(h.ID)
	}
}

func (s *Scheduler) CancelTask(taskID string) {
	s.mu.Lock()
	h, ok := s.pending[taskID]
	s.mu.Unlock()
	if ok {
		s.Cancel(h)
	}
}

func (s *Scheduler) Pending(taskID string) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.pending[taskID]
	return h, ok
}

// NotifyNow shows a notification immediately. An undecided permission is
// requested first and the notification is shown only if it is granted; a
// denied permission drops it silently.
func (s *Scheduler) NotifyNow(ctx context.Context, title, body string) error {
	perm := s.cap.Permission()
	if perm == PermissionDefault {
		perm = s.cap.RequestPermission(ctx)
	}
	if perm != PermissionGranted {
		s.logger.Debug("notification dropped", "title", title, "permission", perm)
		return nil
	}
	if err := s.show(ctx, title, body); err != nil {
		s.logger.Warn("notification failed", "title", title, "err", err)
		return err
	}
	return nil
}

// Deliver shows an event fired by the reminder engine. Events whose handle
// was cancelled or replaced in the meantime are ignored.
func (s *Scheduler) Deliver(ctx context.Context, ev scheduler.Event) (bool, error) {
	s.mu.Lock()
	cur, ok := s.pending[ev.TaskID]
	if !ok || cur.ID != ev.ID {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.pending, ev.TaskID)
	s.mu.Unlock()

	if !s.IsAllowed() {
		return false, nil
	}
	if err := s.show(ctx, ev.Title, ev.Body); err != nil {
		s.logger.Warn("reminder delivery failed", "task", ev.TaskID, "err", err)
		return false, err
	}
	return true, nil
}
