package strataboot

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a dataset without rows is partitioned.
	ErrEmptyDataset = errors.New("strataboot: empty dataset")

	// ErrInsufficientData is returned when a group or one of its strata has
	// no observations to resample from.
	ErrInsufficientData = errors.New("strataboot: insufficient data")

	// ErrInvalidConfiguration is returned for unusable parameters, such as
	// fewer than two repetitions, an unknown execution strategy, or a
	// non-positive worker count.
	ErrInvalidConfiguration = errors.New("strataboot: invalid configuration")

	// ErrDegenerateDistribution is returned when a resampled distribution
	// has a zero mean, which leaves the coefficient of variation undefined.
	ErrDegenerateDistribution = errors.New("strataboot: degenerate distribution")

	// ErrInvalidObservation is returned for observations with a negative or
	// non-finite density.
	ErrInvalidObservation = errors.New("strataboot: invalid observation")
)

// InvalidConfigurationf returns an error that wraps ErrInvalidConfiguration
// with a formatted message.
func InvalidConfigurationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// A GroupError reports the failure of the computation for one group. Index
// is the position of the group in partition order.
type GroupError struct {
	Key   Key
	Index int
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("group %d (%v): %v", e.Index, e.Key, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// A PanicError carries a panic that was recovered inside a worker, together
// with the stack trace of the panicking goroutine.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
