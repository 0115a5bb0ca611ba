package arrangement

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHeader = errors.New("malformed header line, want #Name=N[,M]")
	ErrInvalidRange    = errors.New("lower bound above upper bound")
	ErrMalformedDuty   = errors.New("malformed duty line")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidStudent  = errors.New("not a valid student line")
	ErrOrphanStudent   = errors.New("student listed outside a duty")
)

// ParseError locates a fatal problem in an arrangement file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
