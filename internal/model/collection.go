package model

import (
	"slices"
	"sort"
)

// Collection maps a date key to the tasks created for that day, in insertion
// order. Task ids are unique across the whole collection.
type Collection map[string][]Task

func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for day, tasks := range c {
		out[day] = slices.Clone(tasks)
	}
	return out
}

func (c Collection) Len() int {
	n := 0
	for _, tasks := range c {
		n += len(tasks)
	}
	return n
}

func (c Collection) Dates() []string {
	out := make([]string, 0, len(c))
	for day := range c {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}

func (c Collection) Locate(id string) (string, int, bool) {
	for day, tasks := range c {
		for i, t := range tasks {
			if t.ID == id {
				return day, i, true
			}
		}
	}
	return "", 0, false
}

func (c Collection) CompletedOn(day string) (count int, points int) {
	for _, t := range c[day] {
		if t.Completed {
			count++
			points += t.Points
		}
	}
	return count, points
}
