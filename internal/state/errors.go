package state

import (
	"errors"
	"fmt"
)

// ValidationError reports a rejected mutation: a required field is
// missing, a constraint failed, or a duplicate was detected. The model
// is left untouched and the message is shown to the user as a toast.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// validationf builds a ValidationError from a format string.
func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrBadCredentials is the generic authentication failure. It does not
// distinguish an unknown employee id from a wrong password.
var ErrBadCredentials = errors.New("invalid employee id or password")

// ErrNotPermitted is returned when the session role does not allow the
// attempted mutation.
var ErrNotPermitted = errors.New("operation requires the manager role")

// ErrNoSession is returned when a mutation requires a logged-in user.
var ErrNoSession = errors.New("not logged in")

// ErrTaskNotFound is returned when a task id does not exist in the
// collection.
var ErrTaskNotFound = errors.New("task not found")
