package errors

import (
	"fmt"
	"strings"
)

// Errors is a non-empty list of errors, e.g. the files skipped by a loader.
// A nil Errors means no error.
type Errors interface {
	error
	// Slice returns a copy of the errors.
	Slice() []error
	Len() int
	// Summary renders the first max errors, one per line, and the count of
	// the others.
	Summary(max int) string
}

type list []error

func (l list) Slice() []error {
	return append([]error(nil), l...)
}

func (l list) Len() int {
	return len(l)
}

func (l list) Error() string {
	return l.Summary(len(l))
}

func (l list) Summary(max int) string {
	var lines []string
	for i, err := range l {
		if i == max {
			lines = append(lines, fmt.Sprintf("... and %d more", len(l)-max))
			break
		}
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// flatten returns the items of a list, or err alone.
func flatten(err error) []error {
	switch e := err.(type) {
	case nil:
		return nil
	case list:
		return e
	case Errors:
		return e.Slice()
	}
	return []error{err}
}

// Append adds err to errs. A nil err leaves errs unchanged and a list is
// appended item by item. errs must not be used after the call.
func Append(errs Errors, err error) Errors {
	items := flatten(err)
	if len(items) == 0 {
		return errs
	}
	l, ok := errs.(list)
	if !ok && errs != nil {
		l = list(errs.Slice())
	}
	return append(l, items...)
}

// Combine returns nil, the only non-nil error, or a new list holding the
// items of both. Neither argument is modified.
func Combine(e, f error) error {
	items := append(append([]error(nil), flatten(e)...), flatten(f)...)
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	return list(items)
}
