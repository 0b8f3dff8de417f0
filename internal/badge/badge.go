// Package badge holds the achievement catalog and unlock evaluation.
package badge

import "github.com/sandeepkv93/streakd/internal/model"

type Kind string

const (
	KindTasks  Kind = "tasks"
	KindPoints Kind = "points"
	KindStreak Kind = "streak"
)

type Badge struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Requirement int
}

var catalog = []Badge{
	{ID: "first_task", Name: "First Step", Description: "Complete your first task", Kind: KindTasks, Requirement: 1},
	{ID: "weekly_warrior", Name: "Weekly Warrior", Description: "Keep a 7-day streak", Kind: KindStreak, Requirement: 7},
	{ID: "task_master", Name: "Task Master", Description: "Complete 50 tasks", Kind: KindTasks, Requirement: 50},
	{ID: "club_100", Name: "Club 100", Description: "Complete 100 tasks", Kind: KindTasks, Requirement: 100},
	{ID: "points_king", Name: "Points King", Description: "Earn 500 points", Kind: KindPoints, Requirement: 500},
}

// Catalog returns a copy of the static badge catalog in evaluation order.
func Catalog() []Badge {
	out := make([]Badge, len(catalog))
	copy(out, catalog)
	return out
}

func Find(id string) (Badge, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

func (b Badge) Satisfied(s model.Stats, streak int) bool {
	switch b.Kind {
	case KindTasks:
		return s.TotalTasks >= b.Requirement
	case KindPoints:
		return s.TotalPoints >= b.Requirement
	case KindStreak:
		return streak >= b.Requirement
	default:
		return false
	}
}

// Evaluate adds every newly satisfied badge to the earned set and returns the
// new ones in catalog order. Earned badges are never removed.
func Evaluate(s model.Stats, streak int, cat []Badge) (model.Stats, []Badge) {
	out := s.Clone()
	unlocked := make([]Badge, 0)
	for _, b := range cat {
		if out.HasBadge(b.ID) || !b.Satisfied(out, streak) {
			continue
		}
		out.EarnedBadges = append(out.EarnedBadges, b.ID)
		unlocked = append(unlocked, b)
	}
	return out, unlocked
}
