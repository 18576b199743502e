// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "fmt"

// ValidationError rejects a request before any stage runs: empty query,
// unknown method, or a non-positive result bound.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// UpstreamError wraps a failure or timeout from the embedding provider.
// It applies only to the bert and hybrid methods and never degrades the
// request to a different method's score.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("embedding provider: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConsistencyError reports a paper id that a scoring stage produced but
// the paper table does not contain. This is corrupt-artifact territory,
// not a bad request: the bundle on disk is internally inconsistent.
type ConsistencyError struct {
	ID int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("paper id %d is ranked but missing from the paper table", e.ID)
}
