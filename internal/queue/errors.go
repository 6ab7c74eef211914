package queue

import (
	"errors"
)

// ErrInvalidPayload is returned by Enqueue when a payload does not match the
// schema of its declared job type. No row is written in that case.
var ErrInvalidPayload = errors.New("invalid job payload")

// permanentError marks a handler failure that must not be retried
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps a handler error so the recorder fails the job immediately
// instead of scheduling a retry. Use it for failures a later attempt cannot
// fix: invalid input discovered mid-execution, unsupported configurations,
// provider rejections of the request itself.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked non-retryable. Unclassified
// errors default to retryable since transient provider faults are the
// common failure.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
