package store

import "errors"

var (
	// ErrNoSuchClient is returned when a client ID does not resolve. Callers
	// must surface this as a generic authentication failure, never revealing
	// whether the ID exists.
	ErrNoSuchClient = errors.New("no such client")

	// ErrNoSuchAuthCode is returned when an authorization code lookup misses.
	// A code presented against the wrong client or user is reported with this
	// same error, not a distinct one.
	ErrNoSuchAuthCode = errors.New("no such authorization code")

	// ErrDuplicateCode is returned by SaveAuthCode when the code value
	// collides with an existing row. Practically unreachable given 48 bytes
	// of entropy, but handled rather than ignored.
	ErrDuplicateCode = errors.New("authorization code already exists")

	// ErrNoSuchSession is returned when a session lookup misses.
	ErrNoSuchSession = errors.New("no such session")

	// ErrNoSuchUser is returned when a user lookup misses.
	ErrNoSuchUser = errors.New("no such user")
)
