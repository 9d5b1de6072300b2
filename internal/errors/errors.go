package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrValidation is returned when an input is refused before any request is sent.
type ErrValidation struct {
	Field   string
	Code    string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrAPI is a non-success answer from the deals backend.
type ErrAPI struct {
	Status  int
	Code    int
	Message string
}

func (e *ErrAPI) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// AsValidation unwraps err into an *ErrValidation if it holds one.
func AsValidation(err error) (*ErrValidation, bool) {
	var v *ErrValidation
	if stderrors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsAPI unwraps err into an *ErrAPI if it holds one.
func AsAPI(err error) (*ErrAPI, bool) {
	var a *ErrAPI
	if stderrors.As(err, &a) {
		return a, true
	}
	return nil, false
}
