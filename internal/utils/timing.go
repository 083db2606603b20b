// Package utils holds small HTTP and instrumentation helpers shared by handlers and jobs.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowOperationThreshold is the duration above which TimeOperation logs a warning.
const SlowOperationThreshold = 10 * time.Second

// TimeOperation returns a func that logs the elapsed time when called.
//
// Usage:
//
//	defer utils.TimeOperation("snapshot_upsert", log)()
func TimeOperation(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if duration > SlowOperationThreshold {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
	}
}
