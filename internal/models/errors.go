package models

import "errors"

var (
	// ErrUnknownStep is returned when a step order is outside the
	// role's sequence, or the role itself has no sequence.
	ErrUnknownStep = errors.New("unknown step for role")

	// ErrInvalidPayload is returned for a null, empty or non-JSON
	// step payload. The record is left untouched.
	ErrInvalidPayload = errors.New("invalid step payload")

	// ErrVersionConflict is returned by the store when a save loses
	// the compare-and-swap race. Callers reload and retry.
	ErrVersionConflict = errors.New("progress version conflict")

	// ErrConflict is returned once the tracker's retry budget for
	// version conflicts is exhausted. The whole operation may be
	// retried by the caller.
	ErrConflict = errors.New("concurrent progress update conflict")
)
