package agent

import (
	"github.com/pkg/errors"
)

type fatalError struct {
	err error
}

func (f *fatalError) Error() string {
	return f.err.Error()
}

func (f *fatalError) Unwrap() error {
	return f.err
}

func (f *fatalError) Cause() error {
	return f.err
}

// Fatal marks err as unrecoverable: the agent returning it stops and the
// platform shuts the other agents down.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func IsFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}
