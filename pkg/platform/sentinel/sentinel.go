// Package sentinel holds the storage-level errors that stores return and
// services translate into domain errors. Input validation failures belong in
// pkg/domain-errors instead.
package sentinel

import "errors"

var (
	// ErrNotFound: no row or entry for the key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict: a unique key (public id, email, agrement number) is taken.
	ErrConflict = errors.New("record already exists")
	// ErrInvalidState: the store cannot act on the arguments, e.g. a zero TTL.
	ErrInvalidState = errors.New("store cannot apply request")
)
