package common

import "fmt"

type ErrorCode int

const (
	// ConfigError indicates an invalid column-selection directive: both
	// remove and keep given, neither given, or an unmatched column name
	// while accept-unmatched is disabled. It is user-facing and fatal
	// to the transaction.
	ConfigError ErrorCode = iota
	// NoSuchColumnError indicates a lookup for a column name that does
	// not exist in the schema.
	NoSuchColumnError
	// DuplicateColumnError indicates an attempt to build a schema with
	// two columns of the same name.
	DuplicateColumnError
)

func (ec ErrorCode) String() string {
	switch ec {
	case ConfigError:
		return "ConfigError"
	case NoSuchColumnError:
		return "NoSuchColumnError"
	case DuplicateColumnError:
		return "DuplicateColumnError"
	}
	return "unknown"
}

// Error is the custom error type for the projection stage. It wraps a
// specific ErrorCode with a detailed message.
//
// By implementing the built-in 'error' interface, it integrates
// seamlessly with Go's error handling while carrying enough metadata
// for callers to tell a configuration mistake from a schema lookup
// miss.
type Error struct {
	Code      ErrorCode
	ErrString string
}

func (e Error) Error() string {
	return fmt.Sprintf("err: %s; msg: %s", e.Code.String(), e.ErrString)
}

// Errorf builds an Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) Error {
	return Error{Code: code, ErrString: fmt.Sprintf(format, args...)}
}
