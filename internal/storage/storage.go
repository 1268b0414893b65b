// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "errors"

// ErrNotFound is returned by Get when the key has never been written.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence port. Both operations are assumed fallible:
// callers treat reads and writes defensively (a failed write never crashes
// the UI, a failed read degrades to a default value).
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set writes the value for key, replacing any previous value.
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}
