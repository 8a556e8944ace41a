package utils

import (
	"errors"
	"time"

	"github.com/goto/salt/log"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as one that another attempt cannot fix, Retry returns it
// right away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs f up to retryMax times, backing off exponentially from retryBackoffMs
// milliseconds between attempts. The last error is returned.
func Retry(l log.Logger, retryMax int, retryBackoffMs int64, f func() error) error {
	var err error
	sleepTime := int64(1)

	for i := 0; i < retryMax; i++ {
		err = f()
		if err == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}

		l.Warn("retrying after error", "attempt", i+1, "error", err)
		if i == retryMax-1 {
			break
		}
		sleepTime *= 1 << i
		time.Sleep(time.Duration(sleepTime*retryBackoffMs) * time.Millisecond)
	}

	return err
}
