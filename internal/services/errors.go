// internal/services/errors.go
package services

import (
	"errors"
	"strings"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrStateConflict      = errors.New("state conflict")
	ErrJaFinalizada       = errors.New("movimentacao already finished")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error carries a translatable message. Kind is one of the sentinels above.
type Error struct {
	Kind  error
	Field string
	Key   string
	Args  []interface{}
}

func (e *Error) Error() string {
	return e.Message(i18n.DefaultLang)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func (e *Error) Message(lang string) string {
	return i18n.T(lang, e.Key, e.Args...)
}

func newError(kind error, key string, args ...interface{}) *Error {
	return &Error{Kind: kind, Key: key, Args: args}
}

func fieldError(field, key string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Field: field, Key: key, Args: args}
}

// ValidationErrors collects every field error of one input.
type ValidationErrors struct {
	Fields []*Error
}

func (v *ValidationErrors) Add(field, key string, args ...interface{}) {
	v.Fields = append(v.Fields, fieldError(field, key, args...))
}

func (v *ValidationErrors) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected.
func (v *ValidationErrors) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Field+": "+f.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// MessageOf translates err for lang, falling back to err.Error().
func MessageOf(err error, lang string) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message(lang)
	}
	return err.Error()
}
