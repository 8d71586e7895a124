// Package repository defines control-plane data access plus the sentinel
// error values shared across repositories.  These sentinels let handlers
// distinguish failure scenarios without string matching: ErrSlugExists and
// ErrCodeExists signal uniqueness conflicts at signup, while sql.ErrNoRows
// continues to mark plain lookup misses.
package repository

import "errors"

// ErrSlugExists is returned when a restaurant signup reuses a slug that is
// already registered.  Handlers translate this into an HTTP 409 response.
var ErrSlugExists = errors.New("slug already exists")

// ErrCodeExists is returned when the generated human re-entry code collides
// with an existing one.  Callers should regenerate and retry.
var ErrCodeExists = errors.New("human code already exists")
