package biobdriver

import (
	"errors"
	"fmt"

	"go-biobase-guidance-driver/guidance"
)

var (
	ErrNotOpen     = errors.New("device not opened")
	ErrTimeout     = errors.New("gateway call timed out")
	ErrBusy        = errors.New("device busy")
	ErrNotLive     = errors.New("no acquisition running")
	ErrLoopStopped = errors.New("device loop stopped")
)

// VendorError is a non-zero return code of a gateway call. Negative codes
// are failures, positive codes are warnings the operator may override.
type VendorError struct {
	Op   string
	Code guidance.ReturnCode
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Code, int32(e.Code))
}

func vendorResult(op string, code int32) error {
	if code == 0 {
		return nil
	}
	return &VendorError{Op: op, Code: guidance.ReturnCode(code)}
}

// VendorCode returns the return code carried by err, if any.
func VendorCode(err error) (guidance.ReturnCode, bool) {
	var ve *VendorError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return 0, false
}

func IsWarning(err error) bool {
	code, ok := VendorCode(err)
	return ok && code.IsWarning()
}

func IsFailure(err error) bool {
	code, ok := VendorCode(err)
	return ok && code.IsFailure()
}
