package common

import "fmt"

// Assert checks a condition and panics if it is false.
//
// Errors that can reasonably happen at runtime (an unknown column name
// in a user directive, for example) are returned as Error values.
// Assert is reserved for invariants: a violated assertion means the
// stage was wired against the wrong schema or a cursor was misused,
// which is a programming error upstream. Continuing would silently
// corrupt records, so the stage fails fast instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
