// Package notify wraps the host notification facilities behind a single
// capability and schedules deadline reminders on the reminder engine.
package notify

import (
	"context"
	"errors"
	"sync"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Capability is a host notification surface. Show may be rate limited or
// ignored by the host; callers never treat its failure as fatal.
type Capability interface {
	Permission() Permission
	RequestPermission(ctx context.Context) Permission
	Show(ctx context.Context, title, body string) error
}

// Multi fans a notification out to every granted capability.
type Multi []Capability

func (m Multi) Permission() Permission {
	out := PermissionDenied
	for _, c := range m {
		switch c.Permission() {
		case PermissionGranted:
			return PermissionGranted
		case PermissionDefault:
			out = PermissionDefault
		}
	}
	return out
}

func (m Multi) RequestPermission(ctx context.Context) Permission {
	for _, c := range m {
		if c.Permission() == PermissionDefault {
			c.RequestPermission(ctx)
		}
	}
	return m.Permission()
}

func (m Multi) Show(ctx context.Context, title, body string) error {
	var errs []error
	for _, c := range m {
		if c.Permission() != PermissionGranted {
			continue
		}
		if err := c.Show(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Notification struct {
	Title string
	Body  string
}

// Recorder keeps every shown notification in memory. It backs tests and the
// disabled mode, where notifications only reach the in-app log.
type Recorder struct {
	mu        sync.Mutex
	perm      Permission
	onRequest Permission
	requests  int
	shown     []Notification
}

func NewRecorder(perm Permission) *Recorder {
	return &Recorder{perm: perm, onRequest: perm}
}

// AnswerRequestsWith sets the permission a pending request resolves to.
func (r *Recorder) AnswerRequestsWith(p Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRequest = p
}

func (r *Recorder) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perm
}

func (r *Recorder) RequestPermission(context.Context) Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	if r.perm == PermissionDefault {
		r.perm = r.onRequest
	}
	return r.perm
}

func (r *Recorder) Show(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, Notification{Title: title, Body: body})
	return nil
}

func (r *Recorder) Shown() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.shown))
	copy(out, r.shown)
	return out
}

func (r *Recorder) Requests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}
