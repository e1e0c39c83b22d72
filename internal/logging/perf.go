package logging

import (
	"context"
	"strings"
	"time"
)

const maxLoggedPayload = 1000

var sensitiveMarkers = []string{
	"password", "token", "secret", "api_key", "apikey", "authorization", "bearer",
}

// SanitizeForLog prepares a payload such as an LLM response for a log
// field. Anything mentioning a credential is replaced whole and long text
// is cut.
func SanitizeForLog(data string) string {
	lower := strings.ToLower(data)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return "[REDACTED]"
		}
	}
	if len(data) > maxLoggedPayload {
		return data[:maxLoggedPayload] + "...[TRUNCATED]"
	}
	return data
}

// PerfLogger times one operation and logs its duration when it ends.
type PerfLogger struct {
	Logger
	start time.Time
}

// StartOperation returns a PerfLogger whose records carry operation.
func StartOperation(logger Logger, operation string) *PerfLogger {
	return &PerfLogger{Logger: logger.With("operation", operation), start: time.Now()}
}

// End logs the elapsed time at debug level.
func (p *PerfLogger) End(ctx context.Context) {
	p.Debug(ctx, "Operation completed", "duration_ms", time.Since(p.start).Milliseconds())
}

// EndWithError logs the failure and elapsed time at error level.
func (p *PerfLogger) EndWithError(ctx context.Context, err error) {
	p.Error(ctx, err, "Operation failed", "duration_ms", time.Since(p.start).Milliseconds())
}
