package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType string

const (
	ErrNotFound        ErrorType = "Resource Not Found"
	ErrInvalidArgument ErrorType = "Invalid Argument"
	ErrAlreadyExists   ErrorType = "Resource Already Exists"
	ErrInvalidState    ErrorType = "Invalid State"
	ErrFailedPrecond   ErrorType = "Failed Precondition"
	ErrInternalError   ErrorType = "Internal Error"
)

func (e ErrorType) String() string {
	return string(e)
}

func (e ErrorType) label() string {
	switch e {
	case ErrNotFound:
		return "not found"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrAlreadyExists:
		return "already exists"
	case ErrInvalidState:
		return "invalid state"
	case ErrFailedPrecond:
		return "failed precondition"
	default:
		return "internal error"
	}
}

type DomainError struct {
	ErrorType  ErrorType
	Entity     string
	Message    string
	WrappedErr error
}

func (e *DomainError) Error() string {
	if e.WrappedErr != nil {
		return fmt.Sprintf("%s for entity %s: %s: %s", e.ErrorType.label(), e.Entity, e.Message, e.WrappedErr.Error())
	}
	return fmt.Sprintf("%s for entity %s: %s", e.ErrorType.label(), e.Entity, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.WrappedErr
}

func NewError(errType ErrorType, entity, msg string) *DomainError {
	return &DomainError{
		ErrorType: errType,
		Entity:    entity,
		Message:   msg,
	}
}

func InvalidArgument(entity, msg string) *DomainError {
	return NewError(ErrInvalidArgument, entity, msg)
}

func NotFound(entity, msg string) *DomainError {
	return NewError(ErrNotFound, entity, msg)
}

func AlreadyExists(entity, msg string) *DomainError {
	return NewError(ErrAlreadyExists, entity, msg)
}

func FailedPrecondition(entity, msg string) *DomainError {
	return NewError(ErrFailedPrecond, entity, msg)
}

func InvalidStateTransition(entity, msg string) *DomainError {
	return NewError(ErrInvalidState, entity, msg)
}

func InternalError(entity, msg string, err error) *DomainError {
	return &DomainError{
		ErrorType:  ErrInternalError,
		Entity:     entity,
		Message:    msg,
		WrappedErr: err,
	}
}

// AddErrContext keeps the error type of a domain error and adds the message as context,
// other errors are reported as internal errors.
func AddErrContext(err error, entity, msg string) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return &DomainError{
			ErrorType:  de.ErrorType,
			Entity:     entity,
			Message:    msg,
			WrappedErr: err,
		}
	}
	return InternalError(entity, msg, err)
}

func Wrap(entity, msg string, err error) error {
	if err == nil {
		return nil
	}
	return AddErrContext(err, entity, msg)
}

func IsErrorType(err error, errType ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.ErrorType == errType
	}
	return false
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func New(msg string) error {
	return errors.New(msg)
}

type MultiError struct {
	msg    string
	Errors []error
}

func NewMultiError(msg string) *MultiError {
	return &MultiError{msg: msg}
}

func (m *MultiError) Append(err error) {
	if err == nil {
		return
	}

	var me *MultiError
	if errors.As(err, &me) {
		m.Errors = append(m.Errors, me.Errors...)
		return
	}
	m.Errors = append(m.Errors, err)
}

func (m *MultiError) Error() string {
	var b strings.Builder
	b.WriteString(m.msg)
	b.WriteString(":")
	for _, err := range m.Errors {
		b.WriteString("\n ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (m *MultiError) ToErr() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
