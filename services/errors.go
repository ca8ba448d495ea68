package services

import (
	"errors"

	"github.com/Dosada05/tennis-club/progression"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistenceFailure wraps storage errors; no state change or side
	// effect happens when it is returned.
	ErrPersistenceFailure = errors.New("persistence failure")

	// Подтверждение победителя
	ErrMatchNotFound            = errors.New("match not found")
	ErrNotAParticipant          = errors.New("user is not a participant of this match")
	ErrInvalidWinnerCandidate   = errors.New("selected winner is not a participant of this match")
	ErrAlreadyFinalizedConflict = errors.New("match already finalized with a different winner")

	// Прогрессия
	ErrInvalidInput    = progression.ErrInvalidInput
	ErrUnknownActivity = errors.New("unknown activity type")

	// Пользователи и аутентификация
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters long")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Заявки на матч
	ErrMatchRequestNotFound   = errors.New("match request not found")
	ErrMatchRequestSelf       = errors.New("cannot send a match request to yourself")
	ErrMatchRequestNotPending = errors.New("match request is no longer pending")
	ErrMatchRequestForbidden  = errors.New("only the invited player can accept this match request")
	ErrMatchRequestDuplicate  = errors.New("a pending match request to this player already exists")

	ErrNotificationNotFound = errors.New("notification not found")

	// Аватары
	ErrAvatarUploadDisabled   = errors.New("avatar uploads are not configured")
	ErrUnsupportedContentType = errors.New("unsupported avatar content type")
)
