// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package eventprocessor

import (
	"errors"
	"fmt"
)

// ErrNilAggregator is returned when a handler is created without an aggregator.
var ErrNilAggregator = errors.New("aggregator cannot be nil")

// ErrNilNotifier is returned when a handler is created without a notifier.
var ErrNilNotifier = errors.New("notifier cannot be nil")

// ErrNilPublisher is returned when attempting to create a publisher with nil input.
var ErrNilPublisher = errors.New("publisher cannot be nil")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrIdleTimeout is returned by the consumer service when the idle shutdown
// policy fires. It signals an orderly stop, not a fault.
var ErrIdleTimeout = errors.New("no message within idle timeout")

// DecodeError reports a stream message that does not satisfy the sensor
// event wire contract. The message is dropped and acked; it never reaches
// the aggregator.
type DecodeError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode sensor event: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode sensor event: %s", e.Reason)
}

// Unwrap supports errors.Is/As chains.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newDecodeError builds a DecodeError with an optional cause.
func newDecodeError(reason string, err error) *DecodeError {
	return &DecodeError{Reason: reason, Err: err}
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
