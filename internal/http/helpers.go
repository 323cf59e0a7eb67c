package http

import "github.com/google/uuid"

// newID issues identifiers for resources created through the API.
func newID() string {
	return uuid.NewString()
}
