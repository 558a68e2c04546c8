// Package models defines the persisted entities and their patch types.
//
// Patches enumerate exactly which fields of an entity are mutable. Update
// handlers decode into a patch and apply it; identifiers, tenant keys, and
// the email login key never appear in a patch, so no request body can
// overwrite them.
package models
