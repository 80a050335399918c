package specification

import "github.com/pkg/errors"

// A malformed predicate is a programming error: every one of these aborts
// the compilation and no partial output is returned.
var (
	ErrUnsupportedOperator   = errors.New("unsupported operator")
	ErrUnsupportedFunction   = errors.New("unsupported function")
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
	ErrUnconvertibleValue    = errors.New("unconvertible constant type")
	ErrInvalidFieldPath      = errors.New("invalid member expression")
	ErrDuplicateCondition    = errors.New("duplicate condition")
)
