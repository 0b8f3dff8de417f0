package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateKeyLayout = "2006-01-02"
	ClockLayout   = "15:04"
)

var (
	ErrInvalidCategory = errors.New("model: invalid task category")
	ErrInvalidDateKey  = errors.New("model: invalid date key")
	ErrInvalidClock    = errors.New("model: invalid time of day")
)

type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  Category  `json:"category"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Points    int       `json:"points"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Deadline is the instant the task is scheduled for: its date bucket plus its
// time of day, in loc.
func (t Task) Deadline(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation(DateKeyLayout+" "+ClockLayout, t.Date+" "+t.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: task %s deadline: %w", t.ID, err)
	}
	return at, nil
}

func (t Task) DisplayTitle() string {
	if strings.TrimSpace(t.Title) == "" {
		return "(untitled)"
	}
	return t.Title
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if !t.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a category", t.Category), Err: ErrInvalidCategory}
	}
	if _, err := ParseDateKey(t.Date, time.Local); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", t.Date), Err: err}
	}
	if _, err := NormalizeClock(t.Time); err != nil {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not HH:MM", t.Time), Err: err}
	}
	if t.Points < 0 {
		return &ValidationError{Field: "points", Reason: "must not be negative"}
	}
	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Reason: "is required"}
	}
	return nil
}

// Draft is the user-supplied part of a new task.
type Draft struct {
	Title    string
	Category Category
	Date     string
	Time     string
	// Points overrides the category default when set.
	Points *int
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(string(d.Category)) == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if !d.Category.IsValid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not a category", d.Category), Err: ErrInvalidCategory}
	}
	if strings.TrimSpace(d.Time) == "" {
		return &ValidationError{Field: "time", Reason: "is required"}
	}
	if _, err := NormalizeClock(d.Time); err != nil {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not HH:MM", d.Time), Err: err}
	}
	if _, err := ParseDateKey(d.Date, time.Local); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not YYYY-MM-DD", d.Date), Err: err}
	}
	if d.Points != nil && *d.Points < 0 {
		return &ValidationError{Field: "points", Reason: "must not be negative"}
	}
	return nil
}

func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DateKeyLayout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return day, nil
}

// ShiftDateKey returns the date key days calendar days away from day. Noon is
// used as the anchor so DST transitions never skip or repeat a day.
func ShiftDateKey(day time.Time, days int) string {
	y, m, d := day.Date()
	return DateKey(time.Date(y, m, d+days, 12, 0, 0, 0, day.Location()))
}

// NormalizeClock accepts H:MM or HH:MM and returns the zero-padded HH:MM form,
// which sorts lexicographically in chronological order.
func NormalizeClock(raw string) (string, error) {
	at, err := time.Parse(ClockLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return at.Format(ClockLayout), nil
}
