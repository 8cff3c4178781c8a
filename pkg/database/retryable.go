package database

import (
	"github.com/gocql/gocql"

	"github.com/tradequest/rewards-backend/pkg/errors"
)

// IsRetryableError determines if the error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// gocql surfaces request errors as pointers
	switch err.(type) {
	case *gocql.RequestErrWriteTimeout:
		return true
	case *gocql.RequestErrReadTimeout:
		return true
	case *gocql.RequestErrUnavailable:
		return true
	}

	// Check error message for other retryable conditions
	errMsg := err.Error()
	switch errMsg {
	case "no connections available":
		return true
	case "connection refused":
		return true
	case "connection reset by peer":
		return true
	case "i/o timeout":
		return true
	}

	return false
}

// ClassifyError maps a gocql failure onto the engine's error taxonomy. Timeouts
// and unavailability become TransientError so bounded per-user retries apply;
// everything else passes through unchanged.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == gocql.ErrNotFound {
		return err
	}
	if IsRetryableError(err) {
		return errors.Transient(op, err)
	}
	return err
}
