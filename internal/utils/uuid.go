package utils

import (
	"github.com/google/uuid"
)

// NewRequestID returns a random id used to correlate a request with server logs.
// It falls back to the nil UUID if the random source fails, never blocking a call.
func NewRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil.String()
	}
	return id.String()
}
