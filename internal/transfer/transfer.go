// Package transfer converts the task collection to and from the portable JSON
// array used for import and export.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

// wireTask accepts both historical export shapes: date-partitioned tasks with
// date and time, and flat tasks carrying a deadline.
type wireTask struct {
	ID        json.RawMessage `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Date      string          `json:"date,omitempty"`
	Time      string          `json:"time,omitempty"`
	Deadline  string          `json:"deadline,omitempty"`
	Points    *int            `json:"points,omitempty"`
	Completed bool            `json:"completed"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

type Options struct {
	Location *time.Location
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

var deadlineLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// Decode reads a JSON array of tasks. Any other document shape, an item that
// cannot be mapped, or a repeated id fails the whole import.
func Decode(r io.Reader, opts Options) ([]model.Task, error) {
	opts = opts.withDefaults()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &model.ImportFormatError{Reason: "read payload", Err: err}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &model.ImportFormatError{Reason: "payload is not a JSON array"}
	}
	var items []wireTask
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &model.ImportFormatError{Reason: "payload is not a JSON array of tasks", Err: err}
	}

	out := make([]model.Task, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		t, err := item.toTask(opts)
		if err != nil {
			return nil, &model.ImportFormatError{Reason: fmt.Sprintf("item %d", i), Err: err}
		}
		if seen[t.ID] {
			return nil, &model.ImportFormatError{Reason: fmt.Sprintf("item %d: duplicate id %s", i, t.ID)}
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}

func (w wireTask) toTask(opts Options) (model.Task, error) {
	id, err := parseID(w.ID)
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{ID: id, Title: strings.TrimSpace(w.Title), Completed: w.Completed}

	t.Category = model.CategoryOther
	if c, err := model.ParseCategory(w.Category); err == nil {
		t.Category = c
	}
	t.Points = t.Category.DefaultPoints()
	if w.Points != nil {
		if *w.Points < 0 {
			return model.Task{}, fmt.Errorf("negative points %d", *w.Points)
		}
		t.Points = *w.Points
	}

	t.CreatedAt = createdAt(w.CreatedAt, id, opts)

	var deadline time.Time
	if w.Deadline != "" {
		deadline, err = parseDeadline(w.Deadline, opts.Location)
		if err != nil {
			return model.Task{}, err
		}
	}
	local := t.CreatedAt.In(opts.Location)

	switch {
	case w.Date != "":
		day, err := model.ParseDateKey(w.Date, opts.Location)
		if err != nil {
			return model.Task{}, err
		}
		t.Date = model.DateKey(day)
	case !deadline.IsZero():
		t.Date = model.DateKey(deadline)
	default:
		t.Date = model.DateKey(local)
	}

	switch {
	case w.Time != "":
		clock, err := model.NormalizeClock(w.Time)
		if err != nil {
			return model.Task{}, err
		}
		t.Time = clock
	case !deadline.IsZero():
		t.Time = deadline.Format(model.ClockLayout)
	default:
		t.Time = local.Format(model.ClockLayout)
	}
	return t, nil
}

func parseID(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", fmt.Errorf("missing id")
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("empty id")
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", fmt.Errorf("id %s is neither a string nor a number", trimmed)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// createdAt falls back to the id when it is a millisecond timestamp, and to
// the import time otherwise.
func createdAt(raw, id string, opts Options) time.Time {
	if raw != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return at
		}
	}
	if ms, err := strconv.ParseInt(id, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).In(opts.Location)
	}
	return opts.Now()
}

func parseDeadline(raw string, loc *time.Location) (time.Time, error) {
	if at, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return at.In(loc), nil
	}
	for _, layout := range deadlineLayouts {
		if at, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("deadline %q is not a local date-time", raw)
}

// Encode writes tasks as a JSON array indented with two spaces.
func Encode(w io.Writer, tasks []model.Task) error {
	items := make([]wireTask, 0, len(tasks))
	for _, t := range tasks {
		points := t.Points
		id, _ := json.Marshal(t.ID)
		items = append(items, wireTask{
			ID:        id,
			Title:     t.Title,
			Category:  string(t.Category),
			Date:      t.Date,
			Time:      t.Time,
			Points:    &points,
			Completed: t.Completed,
			CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
