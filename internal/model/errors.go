package model

import (
	"errors"
	"fmt"
)

var (
	// ErrHardwareUnavailable is returned by Open when no supported sensors exist.
	ErrHardwareUnavailable = errors.New("hardware unavailable")

	// ErrTopologyChanged reports that the sensor set no longer matches the
	// handles captured at start-up.
	ErrTopologyChanged = errors.New("sensor topology changed")
)

// ReadError is a transient read failure scoped to one device class.
type ReadError struct {
	Class DeviceClass
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s sensors: %v", e.Class, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// FailedClasses returns the set of classes named by ReadErrors inside err,
// following errors.Join trees. A non-nil err that carries no ReadError
// marks every class as failed.
func FailedClasses(err error) map[DeviceClass]bool {
	if err == nil {
		return nil
	}
	failed := make(map[DeviceClass]bool)
	collectReadErrors(err, failed)
	if len(failed) == 0 {
		for _, c := range Classes {
			failed[c] = true
		}
	}
	return failed
}

func collectReadErrors(err error, into map[DeviceClass]bool) {
	if err == nil {
		return
	}
	var re *ReadError
	if errors.As(err, &re) {
		into[re.Class] = true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectReadErrors(e, into)
		}
	}
}
