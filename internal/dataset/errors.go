package dataset

import "fmt"

// LoadError reports a dataset file that could not be read or is inconsistent.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	prefix := "dataset"
	if e.Path != "" {
		prefix = fmt.Sprintf("dataset %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
