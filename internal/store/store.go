// Package store holds the date-partitioned task collection. It is not safe for
// concurrent use; the tracker serializes access.
package store

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

type Store struct {
	days   model.Collection
	lastID int64
	loc    *time.Location
}

// Removed is what Remove hands back so the deletion can be undone in place.
type Removed struct {
	Task  model.Task
	Date  string
	Index int
}

type Patch struct {
	Title    *string
	Category *model.Category
	Date     *string
	Time     *string
	Points   *int
}

func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{days: make(model.Collection), loc: loc}
}

// FromCollection builds a store from loaded data. Tasks repeating an id that
// was already seen are dropped and counted.
func FromCollection(c model.Collection, loc *time.Location) (*Store, int) {
	s := New(loc)
	seen := make(map[string]bool, c.Len())
	dropped := 0
	for _, day := range c.Dates() {
		for _, t := range c[day] {
			if t.ID == "" || seen[t.ID] {
				dropped++
				continue
			}
			seen[t.ID] = true
			t.Date = day
			s.days[day] = append(s.days[day], t)
			s.observeID(t.ID)
		}
	}
	return s, dropped
}

func (s *Store) Add(d model.Draft, now time.Time) (model.Task, error) {
	if err := d.Validate(); err != nil {
		return model.Task{}, err
	}
	clock, _ := model.NormalizeClock(d.Time)
	day, _ := model.ParseDateKey(d.Date, s.loc)
	points := d.Category.DefaultPoints()
	if d.Points != nil {
		points = *d.Points
	}
	t := model.Task{
		ID:        s.nextID(now),
		Title:     strings.TrimSpace(d.Title),
		Category:  d.Category,
		Date:      model.DateKey(day),
		Time:      clock,
		Points:    points,
		CreatedAt: now,
	}
	s.days[t.Date] = append(s.days[t.Date], t)
	return t, nil
}

func (s *Store) Find(id string) (model.Task, bool) {
	day, i, ok := s.days.Locate(id)
	if !ok {
		return model.Task{}, false
	}
	return s.days[day][i], true
}

func (s *Store) ToggleCompleted(id string) (model.Task, model.Delta, error) {
	day, i, ok := s.days.Locate(id)
	if !ok {
		return model.Task{}, model.Delta{}, &model.NotFoundError{ID: id}
	}
	return s.setCompleted(day, i, !s.days[day][i].Completed)
}

// SetCompleted only reports a delta when the completion state actually changes.
func (s *Store) SetCompleted(id string, completed bool) (model.Task, model.Delta, error) {
	day, i, ok := s.days.Locate(id)
	if !ok {
		return model.Task{}, model.Delta{}, &model.NotFoundError{ID: id}
	}
	if s.days[day][i].Completed == completed {
		return s.days[day][i], model.Delta{}, nil
	}
	return s.setCompleted(day, i, completed)
}

func (s *Store) setCompleted(day string, i int, completed bool) (model.Task, model.Delta, error) {
	t := &s.days[day][i]
	t.Completed = completed
	return *t, model.CompletionDelta(*t, completed), nil
}

// Edit applies p to the task. Changing the category without an explicit
// points value resets points to the new category default. When the task is
// completed the returned delta carries the points difference.
func (s *Store) Edit(id string, p Patch) (model.Task, model.Delta, error) {
	day, i, ok := s.days.Locate(id)
	if !ok {
		return model.Task{}, model.Delta{}, &model.NotFoundError{ID: id}
	}
	before := s.days[day][i]
	after := before
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return model.Task{}, model.Delta{}, &model.ValidationError{Field: "title", Reason: "is required"}
		}
		after.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		if !p.Category.IsValid() {
			return model.Task{}, model.Delta{}, &model.ValidationError{Field: "category", Reason: "is not a category", Err: model.ErrInvalidCategory}
		}
		if *p.Category != before.Category && p.Points == nil {
			after.Points = p.Category.DefaultPoints()
		}
		after.Category = *p.Category
	}
	if p.Points != nil {
		if *p.Points < 0 {
			return model.Task{}, model.Delta{}, &model.ValidationError{Field: "points", Reason: "must not be negative"}
		}
		after.Points = *p.Points
	}
	if p.Time != nil {
		clock, err := model.NormalizeClock(*p.Time)
		if err != nil {
			return model.Task{}, model.Delta{}, &model.ValidationError{Field: "time", Reason: "is not HH:MM", Err: err}
		}
		after.Time = clock
	}
	if p.Date != nil {
		target, err := model.ParseDateKey(*p.Date, s.loc)
		if err != nil {
			return model.Task{}, model.Delta{}, &model.ValidationError{Field: "date", Reason: "is not YYYY-MM-DD", Err: err}
		}
		after.Date = model.DateKey(target)
	}

	if after.Date != day {
		s.removeAt(day, i)
		s.days[after.Date] = append(s.days[after.Date], after)
	} else {
		s.days[day][i] = after
	}

	var delta model.Delta
	if after.Completed && after.Points != before.Points {
		delta.Points = after.Points - before.Points
	}
	return after, delta, nil
}

func (s *Store) Remove(id string) (Removed, model.Delta, error) {
	day, i, ok := s.days.Locate(id)
	if !ok {
		return Removed{}, model.Delta{}, &model.NotFoundError{ID: id}
	}
	t := s.days[day][i]
	s.removeAt(day, i)
	var delta model.Delta
	if t.Completed {
		delta = model.CompletionDelta(t, false)
	}
	return Removed{Task: t, Date: day, Index: i}, delta, nil
}

// Restore puts a removed task back at its original position. A task whose id
// has since been reused is not restored.
func (s *Store) Restore(r Removed) (model.Delta, bool) {
	if _, ok := s.Find(r.Task.ID); ok {
		return model.Delta{}, false
	}
	bucket := s.days[r.Date]
	idx := min(max(r.Index, 0), len(bucket))
	s.days[r.Date] = slices.Insert(bucket, idx, r.Task)
	s.observeID(r.Task.ID)
	if r.Task.Completed {
		return model.CompletionDelta(r.Task, true), true
	}
	return model.Delta{}, true
}

// QueryByDate returns a copy of the day's tasks ordered by time of day.
func (s *Store) QueryByDate(day string) []model.Task {
	out := slices.Clone(s.days[day])
	if out == nil {
		return []model.Task{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Query is QueryByDate narrowed by f.
func (s *Store) Query(day string, f model.Filter) []model.Task {
	all := s.QueryByDate(day)
	if f.IsZero() {
		return all
	}
	out := all[:0]
	for _, t := range all {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) QueryOverdue(now time.Time) []model.Task {
	type due struct {
		task model.Task
		at   time.Time
	}
	items := make([]due, 0)
	for _, tasks := range s.days {
		for _, t := range tasks {
			if t.Completed {
				continue
			}
			at, err := t.Deadline(s.loc)
			if err != nil || !at.Before(now) {
				continue
			}
			items = append(items, due{task: t, at: at})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].at.Equal(items[j].at) {
			return items[i].task.ID < items[j].task.ID
		}
		return items[i].at.Before(items[j].at)
	})
	out := make([]model.Task, 0, len(items))
	for _, it := range items {
		out = append(out, it.task)
	}
	return out
}

// All returns every task ordered by date, then time of day.
func (s *Store) All() []model.Task {
	out := make([]model.Task, 0, s.days.Len())
	for _, day := range s.days.Dates() {
		out = append(out, s.QueryByDate(day)...)
	}
	return out
}

// Replace swaps the whole collection. Callers validate ids beforehand.
func (s *Store) Replace(tasks []model.Task) {
	s.days = make(model.Collection)
	for _, t := range tasks {
		s.days[t.Date] = append(s.days[t.Date], t)
		s.observeID(t.ID)
	}
}

func (s *Store) Collection() model.Collection {
	return s.days.Clone()
}

func (s *Store) Len() int {
	return s.days.Len()
}

func (s *Store) removeAt(day string, i int) {
	bucket := slices.Delete(s.days[day], i, i+1)
	if len(bucket) == 0 {
		delete(s.days, day)
		return
	}
	s.days[day] = bucket
}

// nextID is the creation time in Unix milliseconds, bumped past the last id
// handed out so ids stay unique and increasing.
func (s *Store) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) observeID(id string) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > s.lastID {
		s.lastID = n
	}
}
