package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidResult       = errors.New("invalid result value")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrUnrecoverableDelete = errors.New("committed delete cannot be rolled back; reload authoritative state")
)
