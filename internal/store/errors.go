package store

import "errors"

var (
	// ErrIdentityMismatch indicates the database on disk is stamped with a
	// different check type than the one this store was opened for. The
	// store must not be used further; retrying cannot help.
	ErrIdentityMismatch = errors.New("activity database belongs to a different check")

	// ErrMalformedRecord indicates a stored entry cannot be interpreted
	// as an activity record.
	ErrMalformedRecord = errors.New("malformed activity record")
)
