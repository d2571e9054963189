package models

import "errors"

// Custom errors
var (
	ErrInvalidBetType       = errors.New("invalid bet type")
	ErrUnknownOdds          = errors.New("no odds available for outcome")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrEmptySlip            = errors.New("bet slip is empty")
	ErrInvalidStake         = errors.New("stake must be greater than zero")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrNotFound             = errors.New("record not found")
)
