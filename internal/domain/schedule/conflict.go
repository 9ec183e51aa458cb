// Package schedule detects time conflicts between lessons and expands
// recurring lesson patterns into concrete sessions.
package schedule

import (
	"time"

	"github.com/tutorpilot/tutorpilot/internal/domain/lesson"
)

// Slot is a candidate occupation of the calendar: a start time and an
// optional end. A missing end means the default one-hour lesson interval.
type Slot struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

func (s Slot) EffectiveEnd() time.Time {
	if s.End != nil {
		return *s.End
	}
	return s.Start.Add(lesson.DefaultDuration)
}

// Overlaps reports whether two half-open intervals [start1,end1) and
// [start2,end2) intersect: start1 < end2 && start2 < end1. Back-to-back
// lessons sharing a boundary instant do not conflict.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// ConflictResult reports the lessons a candidate slot collides with.
type ConflictResult struct {
	HasConflict        bool             `json:"has_conflict"`
	ConflictingLessons []*lesson.Lesson `json:"conflicting_lessons,omitempty"`
}

// FindConflicts checks one candidate slot against existing lessons.
// Cancelled lessons do not occupy the calendar and are skipped.
func FindConflicts(candidate Slot, existing []*lesson.Lesson) ConflictResult {
	result := ConflictResult{}
	cStart, cEnd := candidate.Start, candidate.EffectiveEnd()

	for _, l := range existing {
		if l.State.IsTerminal() {
			continue
		}
		if Overlaps(cStart, cEnd, l.StartTime, l.EffectiveEnd()) {
			result.HasConflict = true
			result.ConflictingLessons = append(result.ConflictingLessons, l)
		}
	}

	return result
}

// BatchConflict pairs a rejected candidate with what it collided with.
type BatchConflict struct {
	Candidate Slot `json:"candidate"`
	// ConflictingLessons are pre-existing lessons the candidate overlaps.
	ConflictingLessons []*lesson.Lesson `json:"conflicting_lessons,omitempty"`
	// SiblingStarts are the start times of other candidates in the same
	// batch that the candidate overlaps.
	SiblingStarts []time.Time `json:"sibling_starts,omitempty"`
}

// PartitionBatch checks each candidate against the existing lessons and
// against the other candidates in the batch, and splits the batch into the
// accepted subset and the conflicting remainder. Partial success is the
// expected outcome for bulk generation, not a failure.
func PartitionBatch(candidates []Slot, existing []*lesson.Lesson) (accepted []Slot, conflicts []BatchConflict) {
	for i, c := range candidates {
		bc := BatchConflict{Candidate: c}

		if res := FindConflicts(c, existing); res.HasConflict {
			bc.ConflictingLessons = res.ConflictingLessons
		}

		cStart, cEnd := c.Start, c.EffectiveEnd()
		for j, other := range candidates {
			if i == j {
				continue
			}
			if Overlaps(cStart, cEnd, other.Start, other.EffectiveEnd()) {
				bc.SiblingStarts = append(bc.SiblingStarts, other.Start)
			}
		}

		if len(bc.ConflictingLessons) > 0 || len(bc.SiblingStarts) > 0 {
			conflicts = append(conflicts, bc)
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted, conflicts
}
