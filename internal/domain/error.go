package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionExpired  = errors.New("session expired or invalid")
	ErrJobNotPending   = errors.New("job is not pending")
	ErrJobTerminal     = errors.New("job already reached a terminal state")
	ErrQueueSaturated  = errors.New("worker queue full")

	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
