package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique run ID with the "run_" prefix, used to
// correlate all log events emitted by a single tool invocation.
// Format: run_<uuid>
func NewRunID() string {
	return "run_" + uuid.New().String()
}
