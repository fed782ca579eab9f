// Package simfeed provides a client for the game simulation service.
package simfeed

import "errors"

var (
	// ErrSimServiceUnavailable indicates the simulation service is unreachable
	ErrSimServiceUnavailable = errors.New("simulation service unavailable")

	// ErrSnapshotNotFound indicates no simulation exists for the requested game
	ErrSnapshotNotFound = errors.New("simulation snapshot not found")

	// ErrInvalidSnapshot indicates the simulation response is invalid
	ErrInvalidSnapshot = errors.New("invalid simulation snapshot")
)
