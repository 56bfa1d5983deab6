package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/romana/rlog"
	"gorm.io/gorm"
	"tailor_shop/constants"
)

type ErrorKind string

const (
	KindInvalid         ErrorKind = "invalid"
	KindConstraint      ErrorKind = "constraint"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindDenied          ErrorKind = "denied"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindBackend         ErrorKind = "backend"
)

// Constraint violation classes, named after the postgres condition they come from.
const (
	ViolationUnique     = "unique_violation"
	ViolationForeignKey = "foreign_key_violation"
	ViolationCheck      = "check_violation"
	ViolationNotNull    = "not_null_violation"
)

// StoreError is the structured failure returned by every store operation.
type StoreError struct {
	Kind       ErrorKind `json:"error"`
	Violation  string    `json:"violation,omitempty"`
	Constraint string    `json:"constraint,omitempty"`
	Message    string    `json:"message"`
	Err        error     `json:"-"`
}

func (e *StoreError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Constraint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewInvalidError(msg string) *StoreError {
	return &StoreError{Kind: KindInvalid, Message: msg}
}

// CheckID rejects an empty or malformed row id before it reaches a uuid column.
func CheckID(name, id string) error {
	if id == "" {
		return NewInvalidError(name + " is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return NewInvalidError(name + " must be a uuid")
	}
	return nil
}

func NewConflictError(msg string) *StoreError {
	return &StoreError{Kind: KindConflict, Message: msg}
}

func NewNotFoundError(msg string) *StoreError {
	return &StoreError{Kind: KindNotFound, Message: msg}
}

func NewDeniedError() *StoreError {
	return &StoreError{Kind: KindDenied, Message: constants.PERMISSION_DENIED}
}

func NewConstraintError(violation, constraint, msg string) *StoreError {
	return &StoreError{Kind: KindConstraint, Violation: violation, Constraint: constraint, Message: msg}
}

// IsViolation reports whether err is a constraint violation of the given class
// on the named constraint. An empty constraint matches any constraint.
func IsViolation(err error, violation, constraint string) bool {
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Kind != KindConstraint {
		return false
	}
	if storeErr.Violation != violation {
		return false
	}
	return constraint == "" || storeErr.Constraint == constraint
}

func IsKind(err error, kind ErrorKind) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Kind == kind
}

// TranslateDBError maps driver and gorm errors onto StoreError.
func TranslateDBError(err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StoreError{Kind: KindNotFound, Message: constants.RECORD_NOT_FOUND, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		var violation string
		switch pgErr.Code {
		case "23505":
			violation = ViolationUnique
		case "23503":
			violation = ViolationForeignKey
		case "23514":
			violation = ViolationCheck
		case "23502":
			violation = ViolationNotNull
		}
		// Class 22 is a data exception: the value itself was unusable.
		if strings.HasPrefix(pgErr.Code, "22") {
			return &StoreError{Kind: KindInvalid, Message: constants.INVALID_VALUE, Err: err}
		}
		if violation != "" {
			return &StoreError{
				Kind:       KindConstraint,
				Violation:  violation,
				Constraint: pgErr.ConstraintName,
				Message:    pgErr.Message,
				Err:        err,
			}
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &StoreError{Kind: KindConstraint, Violation: ViolationUnique, Message: err.Error(), Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &StoreError{Kind: KindConstraint, Violation: ViolationForeignKey, Message: err.Error(), Err: err}
	}
	return &StoreError{Kind: KindBackend, Message: err.Error(), Err: err}
}

func errorStatus(e *StoreError) int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindConstraint:
		if e.Violation == ViolationUnique {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDenied:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON StoreError with the matching status code.
func WriteError(w http.ResponseWriter, err error) {
	storeErr := TranslateDBError(err).(*StoreError)
	status := errorStatus(storeErr)
	if status >= http.StatusInternalServerError {
		rlog.Error(storeErr.Error())
	}
	WriteJSON(w, status, storeErr)
}
