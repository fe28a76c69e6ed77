package services

import (
	"errors"
	"fmt"

	"github.com/GovindaEkabote/Cricket-Score-Calculate/scoring"
)

// Категории ошибок. Конкретные ошибки оборачивают одну из них, поэтому
// обработчики HTTP сопоставляют по категории через errors.Is.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

// Не найдено
var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrTeamNotFound       = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("%w: player not found", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrInningNotFound     = fmt.Errorf("%w: inning not found", ErrNotFound)
	ErrNoBallToUndo       = fmt.Errorf("%w: no ball recorded in this inning", ErrNotFound)
)

// Конфликты
var (
	ErrTournamentNameConflict = fmt.Errorf("%w: tournament with this name and season already exists", ErrConflict)
	ErrTeamNameConflict       = fmt.Errorf("%w: team name already exists in this tournament", ErrConflict)
	ErrJerseyNumberConflict   = fmt.Errorf("%w: jersey number already taken in this team", ErrConflict)
	ErrMatchNumberConflict    = fmt.Errorf("%w: match number already used in this tournament", ErrConflict)
	ErrUserEmailConflict      = fmt.Errorf("%w: email address is already in use", ErrConflict)
	ErrBallPositionConflict   = fmt.Errorf("%w: a ball is already recorded at this position", ErrConflict)
	ErrInningExists           = fmt.Errorf("%w: inning already exists for this match", ErrConflict)
	ErrMatchAlreadyFinished   = fmt.Errorf("%w: match is already completed or abandoned", ErrConflict)
)

// Нарушение предусловий (действие в неподходящем состоянии)
var (
	ErrInningCompleted      = fmt.Errorf("%w: inning is already completed", ErrPreconditionFailed)
	ErrMatchNotInProgress   = fmt.Errorf("%w: match is not in progress", ErrPreconditionFailed)
	ErrMatchNotCompleted    = fmt.Errorf("%w: match is not completed", ErrPreconditionFailed)
	ErrInvalidMatchStatus   = fmt.Errorf("%w: action not allowed in the current match status", ErrPreconditionFailed)
	ErrInningsIncomplete    = fmt.Errorf("%w: both innings must be completed", ErrPreconditionFailed)
	ErrPreviousInningOpen   = fmt.Errorf("%w: inning 1 must be completed first", ErrPreconditionFailed)
	ErrTossRequired         = fmt.Errorf("%w: toss has not been recorded", ErrPreconditionFailed)
	ErrPlayingXIMissing     = fmt.Errorf("%w: playing XI must be set for both teams", ErrPreconditionFailed)
	ErrChaseInProgress      = fmt.Errorf("%w: second innings cannot be closed before it is finished", ErrPreconditionFailed)
	ErrUndoNotAllowed       = fmt.Errorf("%w: the last ball of this inning can no longer be undone", ErrPreconditionFailed)
	ErrArchiveNotConfigured = fmt.Errorf("%w: scorecard archive storage is not configured", ErrPreconditionFailed)
	ErrFixturesNeedTwoTeams = fmt.Errorf("%w: fixtures need at least two teams", ErrPreconditionFailed)
	ErrFixturesAlreadyExist = fmt.Errorf("%w: tournament already has matches", ErrPreconditionFailed)
)

// invalidField builds a validation error that carries the offending field.
func invalidField(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, &scoring.ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// mapBallError translates validator outcomes into the service taxonomy.
func mapBallError(err error) error {
	var verr *scoring.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scoring.ErrInningCompleted):
		return ErrInningCompleted
	case errors.Is(err, scoring.ErrPositionOccupied):
		return fmt.Errorf("%w: %v", ErrBallPositionConflict, err)
	case errors.As(err, &verr):
		return fmt.Errorf("%w: %w", ErrValidationFailed, verr)
	}
	return err
}
