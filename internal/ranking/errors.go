package ranking

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is matched by errors.Is when a ranking pass names an unknown job.
var ErrJobNotFound = errors.New("job not found")

// NotFoundError reports the job ID a ranking pass could not find
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job %s: %v", e.JobID, ErrJobNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrJobNotFound
}

// InvalidInputError represents a ranking option or weight outside its valid range
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
