// Package errors extends github.com/pkg/errors with error lists and with the
// kinds used by the pipelines to decide between skipping and aborting.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errorf builds an error without a stack trace.
var Errorf = fmt.Errorf

// New is Errorf.
var New = Errorf

// Cause returns the innermost error of a chain of messages.
var Cause = errors.Cause

// Wrapf prefixes err with a message. Unlike WrapfOrNil, it never returns nil:
// without err the message becomes the error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// WrapfOrNil is Wrapf for a possibly nil err, which stays nil.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrapf(err, format, args...)
}
