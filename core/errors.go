package core

import "github.com/pkg/errors"

// FieldError is the message shown next to a single form input.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when user input is rejected. Fields, when set, carries one message
// per offending input; Err is the summary shown otherwise.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// FieldMap indexes the field messages by input name, nil without Fields.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// shutdown is an error the app cannot keep serving after.
type shutdown string

func NewShutdownError(msg string) error {
	return shutdown(msg)
}

func (s shutdown) Error() string { return string(s) }

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(shutdown)
	return ok
}
