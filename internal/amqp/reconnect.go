package amqp

import (
	"strings"
	"time"
)

// Backoff returns the wait before reconnect attempt n, doubling from
// one second and capped at 30 seconds.
func Backoff(attempt int) time.Duration {
	backoff := time.Second << uint(attempt)
	if backoff > 30*time.Second || backoff <= 0 {
		return 30 * time.Second
	}
	return backoff
}

// IsConnectionError reports whether an error looks like a broken
// broker connection, i.e. worth a reconnect instead of a bail-out.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, needle := range []string{
		"connection refused",
		"connection closed",
		"unexpected EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
