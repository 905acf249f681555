package cifx

import (
	"errors"
	"fmt"
)

var (
	// ErrDriverClosed indicates use of a driver after Close.
	ErrDriverClosed = errors.New("cifx: driver closed")

	// ErrUnsupportedPlatform indicates that the vendor DLL is not available on this platform.
	ErrUnsupportedPlatform = errors.New("cifx: vendor driver is only available on windows")
)

// Error is a failed driver call.
type Error struct {
	Op          string
	Code        Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("cifx: %s failed: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("cifx: %s failed: %s <%s>", e.Op, e.Code, e.Description)
}

// ErrorCode returns the low 16 bits of the driver code for status registers.
func (e *Error) ErrorCode() uint16 {
	return uint16(uint32(e.Code))
}

// CodeOf extracts the driver code from err, or NoError when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return NoError
}
