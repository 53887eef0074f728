// Copyright (c) 2026 Coverdesk. All rights reserved.

// Package uuid wraps google/uuid to generate time-ordered UUIDv7 values.
//
// UUIDv7 is the primary key type across all Coverdesk tables. Because it is
// time-sortable, inserts stay clustered-index friendly in PostgreSQL and
// avoid the index fragmentation common with random UUIDv4.
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable. Entropy failure is
// an unrecoverable system-level error, so there is no error return.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}
