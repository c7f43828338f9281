package services

import (
	"errors"

	"nailstudio-bot/store"
)

var (
	ErrUnauthorized      = errors.New("access denied")
	ErrNotFound          = store.ErrNotFound
	ErrIncompleteDraft   = errors.New("booking draft is incomplete")
	ErrDraftMissing      = errors.New("no booking in progress")
	ErrInvalidOption     = errors.New("option is not available")
	ErrStepOutOfOrder    = errors.New("step does not match the booking state")
	ErrInvalidTransition = errors.New("appointment status does not allow this action")
	ErrInvalidCategory   = errors.New("unknown gallery category")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidBirthday   = errors.New("birthday must look like DD.MM.YYYY")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrEmptyMessage      = errors.New("message is empty")
)
