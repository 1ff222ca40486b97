package errors

import "fmt"

// Kind classifies pipeline failures so callers can decide whether to abort.
type Kind int

const (
	// KindConfig marks invalid configuration: bad resolutions, ratios, fold counts.
	KindConfig Kind = iota + 1
	// KindIntegrity marks data that would corrupt fold membership if processing went on.
	KindIntegrity
	// KindPartial marks a single missing or unreadable input.
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindIntegrity:
		return "data integrity error"
	case KindPartial:
		return "partial data error"
	default:
		return "unknown error"
	}
}

type kindError struct {
	kind Kind
	msg  string
}

func (e kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Config returns a KindConfig error
func Config(format string, args ...interface{}) error {
	return kindError{kind: KindConfig, msg: fmt.Sprintf(format, args...)}
}

// Integrity returns a KindIntegrity error
func Integrity(format string, args ...interface{}) error {
	return kindError{kind: KindIntegrity, msg: fmt.Sprintf(format, args...)}
}

// Partial returns a KindPartial error
func Partial(format string, args ...interface{}) error {
	return kindError{kind: KindPartial, msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the (possibly wrapped) error, or 0 if it has none.
func KindOf(err error) Kind {
	if ke, ok := Cause(err).(kindError); ok {
		return ke.kind
	}
	return 0
}

// Is reports whether err (or its cause) has the given Kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
