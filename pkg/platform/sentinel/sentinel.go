package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so components can translate them into domain errors.
//
// These represent factual states about stored entries, not validation failures:
// - ErrNotFound: key or entity does not exist in the store
// - ErrConflict: entity already exists
// - ErrInvalidState: unit of work is closed or otherwise unusable
// - ErrReadOnly: write attempted inside a read-only view
// - ErrUnavailable: backend or lock temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrReadOnly     = errors.New("read only")
	ErrUnavailable  = errors.New("unavailable")
)
