package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These state facts about a resource, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: write lost to a concurrent state change
// - ErrExpired: deadline-bound resource is past its deadline
// - ErrAlreadyUsed: one-shot resource already consumed
// - ErrInvalidState: entity in the wrong state for the requested operation
// - ErrUnavailable: downstream service temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
