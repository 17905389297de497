package types

import "errors"

// Engine error taxonomy. Every operation either succeeds, partially succeeds
// (partial fill), or is rejected with one of these. Violated internal
// invariants panic instead: they are programming defects, not runtime
// conditions to recover from.
var (
	// ErrInvalidIntent marks a malformed order intent (non-positive
	// quantity, missing limit price). Rejected before any book mutation.
	ErrInvalidIntent = errors.New("invalid order intent")

	// ErrUnknownOrder marks a cancel or modify referencing an order id that
	// is not currently resting (already filled or previously cancelled).
	ErrUnknownOrder = errors.New("unknown order")

	// ErrOverflow marks fixed-point arithmetic that would exceed the safe
	// integer range.
	ErrOverflow = errors.New("fixed-point overflow")

	// ErrEmptyQueue marks a pop from an empty time-priority queue.
	ErrEmptyQueue = errors.New("empty queue")
)
