// Package cifx is the narrow surface of the vendor fieldbus driver.
//
// API mirrors the driver's C entry points one to one. Driver owns the driver handle and
// turns return codes into *Error values carrying the driver's own description.
package cifx

import (
	"fmt"
)

// Code is a raw driver return code.
type Code int32

// String formats the code the way the driver documentation does.
func (c Code) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Handle is an opaque driver or channel handle. Zero is never valid.
type Handle uintptr

// Host and bus state commands.
const (
	HostStateNotReady uint32 = 0
	HostStateReady    uint32 = 1

	BusStateOff uint32 = 0
	BusStateOn  uint32 = 1
)

// Driver entry point names, used as Error.Op.
const (
	OpDriverOpen   = "xDriverOpen"
	OpDriverClose  = "xDriverClose"
	OpChannelOpen  = "xChannelOpen"
	OpChannelClose = "xChannelClose"
	OpHostState    = "xChannelHostState"
	OpBusState     = "xChannelBusState"
	OpIORead       = "xChannelIORead"
	OpIOWrite      = "xChannelIOWrite"
)

// API is the driver collaborator contract.
// Blocking calls wait at most timeoutMs and then return a timeout code.
type API interface {
	DriverOpen() (Handle, Code)
	DriverClose(driver Handle) Code

	ChannelOpen(driver Handle, board string, channel uint32) (Handle, Code)
	ChannelClose(channel Handle) Code

	ChannelHostState(channel Handle, cmd uint32, timeoutMs uint32) (uint32, Code)
	ChannelBusState(channel Handle, cmd uint32, timeoutMs uint32) (uint32, Code)

	ChannelIORead(channel Handle, area, offset uint32, buf []byte, timeoutMs uint32) Code
	ChannelIOWrite(channel Handle, area, offset uint32, buf []byte, timeoutMs uint32) Code

	ErrorDescription(code Code) string
}
