package plan

import (
	"fmt"
	"math"
)

const (
	// Tasks longer than this get broken into workday-sized parts
	splitThresholdHours = 24.0
	splitChunkHours     = 8.0
)

// SplitLongTasks breaks any task over the threshold into sequential
// workday-sized parts, with whatever remains in the final part. The
// first part inherits the
// original task's dependencies (pointing at the final part of any
// dependency that was itself split), and later parts chain on the
// previous part. IDs are reassigned sequentially afterwards.
func SplitLongTasks(tasks []Task) []Task {
	return splitLongTasks(tasks, splitThresholdHours, splitChunkHours)
}

func splitLongTasks(tasks []Task, threshold, chunk float64) []Task {
	out := make([]Task, 0, len(tasks))
	// lastPart[i] is the new index of the final part of original task i
	lastPart := make([]int, len(tasks))

	for i := range tasks {
		t := tasks[i]

		deps := make([]int, 0, len(t.Dependencies))
		for _, d := range t.Dependencies {
			if d >= 0 && d < i {
				deps = append(deps, lastPart[d])
			}
		}

		if t.EstimatedHours <= threshold {
			t.Dependencies = deps
			t.ID = len(out)
			out = append(out, t)
			lastPart[i] = t.ID
			continue
		}

		parts := int(math.Ceil(t.EstimatedHours / chunk))
		for p := 1; p <= parts; p++ {
			part := t
			part.ID = len(out)
			part.Title = fmt.Sprintf("%s (Part %d of %d)", t.Title, p, parts)
			part.EstimatedHours = chunk
			if p == parts {
				part.EstimatedHours = round1(t.EstimatedHours - chunk*float64(parts-1))
			}
			if p == 1 {
				part.Dependencies = deps
			} else {
				part.Dependencies = []int{len(out) - 1}
			}
			out = append(out, part)
		}
		lastPart[i] = len(out) - 1
	}
	return out
}
