package metrics

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// TrackDBOperation times a database operation. Call the returned function with
// the operation's error when it finishes.
func TrackDBOperation(operation string, table string) func(error) {
	start := time.Now()
	return func(err error) {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			TrackDBError(err)
		}
		DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
		DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration)
	}
}

// TrackDBError classifies and counts a database error.
func TrackDBError(err error) {
	if err == nil {
		return
	}

	errorType := "unknown"
	switch {
	case err == gocql.ErrTimeoutNoResponse:
		errorType = "timeout"
	case err == gocql.ErrConnectionClosed:
		errorType = "connection"
	case strings.Contains(err.Error(), "unavailable"):
		errorType = "unavailable"
	case strings.Contains(err.Error(), "query"):
		errorType = "query"
	}

	DatabaseErrorsTotal.WithLabelValues(errorType).Inc()
}
