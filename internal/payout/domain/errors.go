package domain

import "errors"

var (
	ErrInvalidSession   = errors.New("invalid_session")
	ErrRunNotFound      = errors.New("payout_run_not_found")
	ErrAlreadyFinalized = errors.New("payout_run_already_finalized")
)
