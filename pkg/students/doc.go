// Package students implements the discipleship journey: student records,
// the two New Birth milestones, the eight First Steps trackers, and the
// tenant-wide progress statistics.
//
// New Birth is a 2-of-2 AND-gate with no ordering between the milestones.
// CompletionDate is non-nil exactly when both milestones are complete and
// is recomputed on every milestone update. Un-marking a milestone keeps its
// recorded date; only CompletionDate is cleared. The same date-preservation
// rule applies to First Steps.
package students
