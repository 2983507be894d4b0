package format

import (
	"github.com/google/uuid"
)

// NewRunID returns a time-ordered identifier for one pipeline run.
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
