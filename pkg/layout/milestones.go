package layout

import (
	"sort"
)

// TagMilestoneBaselines links every task with an actual span to the nearest
// baseline milestone strictly before its start and strictly after its end,
// skipping its own baseline. A baseline milestone that coincides exactly with
// some task's start or end belongs to that task's bar and is never offered
// as a neighbour.
//
// Runs in O(b log b + c·n) for b baseline milestones, n tasks and c claimed
// candidates skipped per lookup.
func TagMilestoneBaselines(tasks []*TaskLayout) {
	var points []*TaskLayout
	for _, t := range tasks {
		t.PrevMilestoneBaseline, t.NextMilestoneBaseline = nil, nil
		if t.Baseline.IsPoint() {
			points = append(points, t)
		}
	}
	if len(points) == 0 {
		return
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Baseline.Start < points[j].Baseline.Start
	})

	at := func(i int) int64 { return points[i].Baseline.Start }
	lowerBound := func(v int64) int {
		return sort.Search(len(points), func(i int) bool { return at(i) >= v })
	}

	claimed := make([]bool, len(points))
	claim := func(owner *TaskLayout, v int64) {
		for i := lowerBound(v); i < len(points) && at(i) == v; i++ {
			if points[i] != owner {
				claimed[i] = true
			}
		}
	}
	for _, t := range tasks {
		if !t.Actual.Valid {
			continue
		}
		claim(t, t.Actual.Start)
		if t.Actual.End != t.Actual.Start {
			claim(t, t.Actual.End)
		}
	}

	for _, t := range tasks {
		if !t.Actual.Valid {
			continue
		}
		for i := lowerBound(t.Actual.Start) - 1; i >= 0; i-- {
			if !claimed[i] && points[i] != t {
				t.PrevMilestoneBaseline = points[i]
				break
			}
		}
		for i := lowerBound(t.Actual.End + 1); i < len(points); i++ {
			if !claimed[i] && points[i] != t {
				t.NextMilestoneBaseline = points[i]
				break
			}
		}
	}
}
