package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusAll       Status = ""
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return StatusAll, nil
	case "pending", "open", "todo":
		return StatusPending, nil
	case "completed", "done":
		return StatusCompleted, nil
	default:
		return StatusAll, &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not all, pending or completed", raw)}
	}
}

// Next cycles all -> pending -> completed -> all.
func (s Status) Next() Status {
	switch s {
	case StatusAll:
		return StatusPending
	case StatusPending:
		return StatusCompleted
	default:
		return StatusAll
	}
}

// Filter narrows a task list. Zero fields match everything; Search is a
// case-insensitive substring of the title.
type Filter struct {
	Search   string
	Category Category
	Status   Status
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.Category == "" && f.Status == StatusAll
}

func (f Filter) Matches(t Task) bool {
	if s := strings.TrimSpace(f.Search); s != "" {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(s)) {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	switch f.Status {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	}
	return true
}

// NextCategory cycles the category filter through every category and back to
// none.
func (f Filter) NextCategory() Category {
	cats := Categories()
	if f.Category == "" {
		return cats[0]
	}
	for i, c := range cats {
		if c == f.Category && i+1 < len(cats) {
			return cats[i+1]
		}
	}
	return ""
}

func (f Filter) String() string {
	if f.IsZero() {
		return "none"
	}
	var parts []string
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("%q", s))
	}
	if f.Category != "" {
		parts = append(parts, "category="+string(f.Category))
	}
	if f.Status != StatusAll {
		parts = append(parts, "status="+string(f.Status))
	}
	return strings.Join(parts, " ")
}
