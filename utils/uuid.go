package utils

import (
	"github.com/google/uuid"
)

// maxRequestIDLength bounds a caller-supplied X-Request-ID before it reaches the logs
const maxRequestIDLength = 128

// RequestID returns the caller's request ID when it is a short printable
// token, otherwise a fresh UUID. The result tags every log line of a request.
func RequestID(incoming string) string {
	if incoming == "" || len(incoming) > maxRequestIDLength {
		return uuid.New().String()
	}
	for _, r := range incoming {
		if r <= ' ' || r > '~' {
			return uuid.New().String()
		}
	}
	return incoming
}
