package db

import "errors"

var (
	// ErrNotFound is returned when a looked up advisory does not exist in the store.
	ErrNotFound = errors.New("vulnerability not found")

	// ErrStoreInUse is returned when another process holds the store of the same cache directory.
	ErrStoreInUse = errors.New("vulnerability store is in use by another process")

	errInTransaction = errors.New("operation is not allowed inside a transaction")
)
