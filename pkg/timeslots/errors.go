package timeslots

import (
	"errors"
	"fmt"
)

// TimeSlotsFinderError reports a configuration that cannot produce slots.
// It is raised before any I/O and is never worth retrying.
type TimeSlotsFinderError struct {
	Field   string
	Message string
}

func (e *TimeSlotsFinderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("time slots finder: %s", e.Message)
	}
	return fmt.Sprintf("time slots finder: %s: %s", e.Field, e.Message)
}

func newFinderError(field, format string, args ...any) *TimeSlotsFinderError {
	return &TimeSlotsFinderError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsFinderError(err error) bool {
	var finderErr *TimeSlotsFinderError
	return errors.As(err, &finderErr)
}
