package driver

import (
	"fmt"

	"github.com/sarchlab/owcet/driver/errkind"
)

// Error is the driver's error taxonomy carrier (spec.md §7): every error
// surfaced above a processor boundary is one of these, wrapping the
// low-level cause (if any) and naming which of §7's categories it belongs
// to. Grounded on the teacher's fmt.Errorf("...: %w", err) wrapping
// convention (loader.Load), generalized into a typed error the driver can
// switch on by Kind rather than string-matching messages.
type Error struct {
	Kind errkind.Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

func newError(kind errkind.Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
