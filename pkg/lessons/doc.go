// Package lessons implements per-study lesson progress: listing, status
// updates, completion, and append-only teacher/student notes.
package lessons
