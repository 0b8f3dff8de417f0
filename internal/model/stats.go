package model

import "slices"

type Stats struct {
	TotalPoints  int      `json:"totalPoints"`
	TotalTasks   int      `json:"totalTasks"`
	Streak       int      `json:"streak"`
	EarnedBadges []string `json:"earnedBadges"`
}

func (s Stats) HasBadge(id string) bool {
	return slices.Contains(s.EarnedBadges, id)
}

func (s Stats) Clone() Stats {
	out := s
	out.EarnedBadges = slices.Clone(s.EarnedBadges)
	if out.EarnedBadges == nil {
		out.EarnedBadges = []string{}
	}
	return out
}

// badgeAliases maps ids written by the other front end onto catalog ids.
var badgeAliases = map[string]string{
	"week_warrior": "weekly_warrior",
	"hundred_club": "club_100",
	"point_king":   "points_king",
}

// Normalize clamps counters at zero, maps aliased badge ids and drops
// duplicate or empty ones, keeping first-earned order.
func (s Stats) Normalize() Stats {
	out := s.Clone()
	out.TotalPoints = max(out.TotalPoints, 0)
	out.TotalTasks = max(out.TotalTasks, 0)
	out.Streak = max(out.Streak, 0)
	seen := make(map[string]bool, len(out.EarnedBadges))
	badges := out.EarnedBadges[:0]
	for _, id := range out.EarnedBadges {
		if canon, ok := badgeAliases[id]; ok {
			id = canon
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		badges = append(badges, id)
	}
	out.EarnedBadges = badges
	return out
}

// Delta is the change in completed points and task count produced by a single
// completion transition.
type Delta struct {
	Points int
	Tasks  int
}

func (d Delta) IsZero() bool {
	return d.Points == 0 && d.Tasks == 0
}

func (d Delta) Add(o Delta) Delta {
	return Delta{Points: d.Points + o.Points, Tasks: d.Tasks + o.Tasks}
}

func CompletionDelta(t Task, completed bool) Delta {
	if completed {
		return Delta{Points: t.Points, Tasks: 1}
	}
	return Delta{Points: -t.Points, Tasks: -1}
}
