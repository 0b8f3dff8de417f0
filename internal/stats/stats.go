// Package stats derives the aggregate counters shown on the stats screen.
package stats

import (
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

// MaxStreakDays bounds the backward streak walk.
const MaxStreakDays = 365

// Apply folds a completion delta into prior, clamping both counters at zero.
func Apply(prior model.Stats, delta model.Delta) model.Stats {
	out := prior.Clone()
	out.TotalPoints = max(out.TotalPoints+delta.Points, 0)
	out.TotalTasks = max(out.TotalTasks+delta.Tasks, 0)
	return out
}

// ComputeStreak counts consecutive days ending today that have at least one
// completed task. A day without completions, today included, ends the walk.
func ComputeStreak(c model.Collection, today time.Time) int {
	streak := 0
	for i := 0; i < MaxStreakDays; i++ {
		count, _ := c.CompletedOn(model.ShiftDateKey(today, -i))
		if count == 0 {
			break
		}
		streak++
	}
	return streak
}

type Day struct {
	Date      string
	Points    int
	Completed int
	Total     int
}

type Rollup struct {
	Days      []Day
	Points    int
	Completed int
}

// LastNDays reports completions for today and the n-1 days before it, oldest
// first.
func LastNDays(c model.Collection, today time.Time, n int) Rollup {
	if n <= 0 {
		return Rollup{Days: []Day{}}
	}
	out := Rollup{Days: make([]Day, 0, n)}
	for i := n - 1; i >= 0; i-- {
		key := model.ShiftDateKey(today, -i)
		count, points := c.CompletedOn(key)
		out.Days = append(out.Days, Day{Date: key, Points: points, Completed: count, Total: len(c[key])})
		out.Points += points
		out.Completed += count
	}
	return out
}

type Ratio struct {
	Completed int
	Total     int
}

func (r Ratio) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Completed) / float64(r.Total)
}

type Progress struct {
	Day  Ratio
	Week Ratio
}

// ComputeProgress reports today's completion ratio and the ratio for the
// week to date. Weeks start on Sunday.
func ComputeProgress(c model.Collection, today time.Time) Progress {
	var p Progress
	key := model.DateKey(today)
	p.Day.Completed, _ = c.CompletedOn(key)
	p.Day.Total = len(c[key])

	for i := int(today.Weekday()); i >= 0; i-- {
		day := model.ShiftDateKey(today, -i)
		done, _ := c.CompletedOn(day)
		p.Week.Completed += done
		p.Week.Total += len(c[day])
	}
	return p
}
