package tests

import (
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/dsl"
)

// must unwraps builder results. The fixtures below are static, so a build
// error is a bug in the test itself.
func must(snap *domain.Snapshot, err error) *domain.Snapshot {
	if err != nil {
		panic(err)
	}
	return snap
}

// sprintInitial is a small board in its starting state.
func sprintInitial() *domain.Snapshot {
	return must(dsl.New().
		Section("todo").Title("To Do").
		RowWith("write-spec", map[string]any{"assignee": "dana", "points": 3}).
		RowWith("review-design", map[string]any{"assignee": "mori", "points": 2}).
		Section("doing").Title("Doing").
		Build())
}

// sprintMidweek moves one row across sections, inserts another and edits
// content, so reconciling from sprintInitial produces a mixed script.
func sprintMidweek() *domain.Snapshot {
	return must(dsl.New().
		Section("todo").Title("To Do").
		RowWith("review-design", map[string]any{"assignee": "mori", "points": 2}).
		RowWith("fix-ci", map[string]any{"assignee": "dana", "points": 1}).
		Section("doing").Title("Doing").
		RowWith("write-spec", map[string]any{"assignee": "dana", "points": 5}).
		Build())
}

// sprintDone collapses everything into a single closing section.
func sprintDone() *domain.Snapshot {
	return must(dsl.New().
		Section("done").Title("Done").
		RowWith("write-spec", map[string]any{"assignee": "dana", "points": 5}).
		RowWith("review-design", map[string]any{"assignee": "mori", "points": 2}).
		RowWith("fix-ci", map[string]any{"assignee": "dana", "points": 1}).
		Build())
}
