// Package studies implements bible study groups: creation with lesson
// seeding, enrollment management, and the status lifecycle
// (in-progress, completed, paused).
package studies
