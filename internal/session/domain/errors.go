package domain

import "errors"

var (
	ErrInvalidMentor      = errors.New("invalid_mentor")
	ErrInvalidSessionType = errors.New("invalid_session_type")
	ErrInvalidDuration    = errors.New("invalid_duration")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrFutureSessionDate  = errors.New("future_session_date")
	ErrNotFound           = errors.New("session_not_found")
	ErrStoreUnavailable   = errors.New("store_unavailable")
)
