package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so clones and wraps compare equal
// to the predefined values.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Attendance session error kinds.
var (
	ErrSessionNotFound      = New("SESSION_NOT_FOUND", http.StatusNotFound, "attendance session not found")
	ErrSessionAlreadyExists = New("SESSION_ALREADY_EXISTS", http.StatusConflict, "attendance session already exists for class and date")
	ErrSessionCompleted     = New("SESSION_COMPLETED", http.StatusConflict, "attendance session already completed")
	ErrRecordValidation     = New("RECORD_VALIDATION_ERROR", http.StatusBadRequest, "invalid attendance record")
	ErrRosterUnavailable    = New("ROSTER_UNAVAILABLE", http.StatusServiceUnavailable, "class roster unavailable")
	ErrStoreUnavailable     = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "attendance store unavailable")
	ErrExportNotReady       = New("EXPORT_NOT_READY", http.StatusConflict, "export not ready")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Transient reports whether the error kind may succeed on retry.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	switch e.Code {
	case ErrStoreUnavailable.Code, ErrRosterUnavailable.Code, ErrInternal.Code:
		return true
	default:
		return false
	}
}

var localized = map[string]string{
	ErrNotFound.Code:             "Ressource introuvable.",
	ErrForbidden.Code:            "Accès refusé.",
	ErrUnauthorized.Code:         "Authentification requise.",
	ErrConflict.Code:             "Conflit avec l'état actuel.",
	ErrValidation.Code:           "Données invalides.",
	ErrInternal.Code:             "Erreur interne du serveur.",
	ErrSessionNotFound.Code:      "Session de présence introuvable.",
	ErrSessionAlreadyExists.Code: "Une session de présence existe déjà pour cette classe et cette date.",
	ErrSessionCompleted.Code:     "La session de présence est déjà clôturée.",
	ErrRecordValidation.Code:     "Enregistrement de présence invalide.",
	ErrRosterUnavailable.Code:    "La liste des élèves de la classe est indisponible.",
	ErrStoreUnavailable.Code:     "Le service de présence est momentanément indisponible.",
	ErrExportNotReady.Code:       "L'export n'est pas encore prêt.",
}

// Localize returns the end-user (French) message for an error code, falling
// back to the generic internal error message.
func Localize(e *Error) string {
	if e == nil {
		return ""
	}
	if msg, ok := localized[e.Code]; ok {
		return msg
	}
	return localized[ErrInternal.Code]
}
