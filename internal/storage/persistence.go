// Package storage persists the task collection and the stats record as two
// independent JSON documents.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandeepkv93/streakd/internal/model"
)

const (
	DocTasks = "tasks"
	DocStats = "stats"
)

type Persistence interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

type Snapshot struct {
	Tasks model.Collection
	Stats model.Stats
	// Discarded names the documents that were present but unreadable and
	// were loaded as empty values.
	Discarded []string
}

func EmptySnapshot() Snapshot {
	return Snapshot{Tasks: make(model.Collection), Stats: model.Stats{EarnedBadges: []string{}}}
}

func encodeDocuments(snap Snapshot) (tasks []byte, stats []byte, err error) {
	c := snap.Tasks
	if c == nil {
		c = make(model.Collection)
	}
	tasks, err = json.Marshal(c)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tasks: %w", err)
	}
	stats, err = json.Marshal(snap.Stats.Normalize())
	if err != nil {
		return nil, nil, fmt.Errorf("encode stats: %w", err)
	}
	return tasks, stats, nil
}

// decodeDocuments never fails: a malformed document is treated as absent.
func decodeDocuments(tasksRaw, statsRaw []byte) Snapshot {
	snap := EmptySnapshot()
	if c, ok := decodeTasks(tasksRaw); ok {
		snap.Tasks = c
	} else {
		snap.Discarded = append(snap.Discarded, DocTasks)
	}
	if s, ok := decodeStats(statsRaw); ok {
		snap.Stats = s
	} else {
		snap.Discarded = append(snap.Discarded, DocStats)
	}
	return snap
}

func decodeTasks(raw []byte) (model.Collection, bool) {
	out := make(model.Collection)
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, true
	}
	var c model.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return out, false
	}
	for day, tasks := range c {
		if len(tasks) == 0 {
			continue
		}
		for i := range tasks {
			tasks[i].Date = day
		}
		out[day] = tasks
	}
	return out, true
}

func decodeStats(raw []byte) (model.Stats, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Stats{EarnedBadges: []string{}}, true
	}
	var s model.Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Stats{EarnedBadges: []string{}}, false
	}
	return s.Normalize(), true
}
