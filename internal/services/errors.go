package services

import "errors"

var (
	// ErrMissingEndpoint means the caller did not supply both start and end.
	ErrMissingEndpoint = errors.New("start and end coordinates are required")
	// ErrNoBaseRoute means the direct route could not be obtained. It is the
	// only failure that aborts a planning run.
	ErrNoBaseRoute = errors.New("no route available")
)
