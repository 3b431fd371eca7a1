package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoActiveJob     = errors.New("no active generation job")
	ErrJobTimeout      = errors.New("generation timed out")
	ErrWizardClosed    = errors.New("wizard is closed")
	ErrAlreadyPolling  = errors.New("poll session already running")
)
