package growablearray

import "github.com/pkg/errors"

// InvalidArgumentError is returned when a caller passes an argument that
// violates a documented precondition, such as adding the reserved
// tombstone value.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return e.msg }

func newInvalidArgumentError(format string, args ...interface{}) error {
	return &InvalidArgumentError{msg: errors.Errorf(format, args...).Error()}
}

// IndexError is returned when a logical index falls outside the range a
// call is allowed to address: remove with i < 0 or i >= size, or address
// resolution for i > size.
type IndexError struct {
	msg string
}

func (e *IndexError) Error() string { return e.msg }

func newIndexError(format string, args ...interface{}) error {
	return &IndexError{msg: errors.Errorf(format, args...).Error()}
}
