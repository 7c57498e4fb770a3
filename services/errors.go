package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/intramural-draws/brackets"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrSportNotFound       = errors.New("sport not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrParticipantNotFound = errors.New("participant registration not found")

	// Жеребьёвка
	ErrInsufficientParticipants = brackets.ErrInsufficientParticipants
	ErrDrawInProgress           = errors.New("a draw for this sport and round is already being generated")
	ErrRoundAlreadyDrawn        = errors.New("matches already exist for this sport and round")

	ErrPersistence             = errors.New("failed to persist matches")
	ErrNotificationsIncomplete = errors.New("some match notifications could not be scheduled")
)

// PersistenceError is returned when the match batch fails part way.
// CreatedMatchIDs lists the rows that were written before the failure.
type PersistenceError struct {
	CreatedMatchIDs []int
	Err             error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%v (%d matches created before failure): %v", ErrPersistence, len(e.CreatedMatchIDs), e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
