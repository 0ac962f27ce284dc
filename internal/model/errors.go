package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")

	// Video errors
	ErrVideoFileNotFound = errors.New("video file not found")
	ErrInvalidFilename   = errors.New("invalid video file name")
)
