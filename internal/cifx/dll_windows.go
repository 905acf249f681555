//go:build windows

package cifx

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modCifx = windows.NewLazySystemDLL("cifX32dll.dll")

	procDriverOpen          = modCifx.NewProc("xDriverOpen")
	procDriverClose         = modCifx.NewProc("xDriverClose")
	procChannelOpen         = modCifx.NewProc("xChannelOpen")
	procChannelClose        = modCifx.NewProc("xChannelClose")
	procChannelHostState    = modCifx.NewProc("xChannelHostState")
	procChannelBusState     = modCifx.NewProc("xChannelBusState")
	procChannelIORead       = modCifx.NewProc("xChannelIORead")
	procChannelIOWrite      = modCifx.NewProc("xChannelIOWrite")
	procDriverGetErrorDescr = modCifx.NewProc("xDriverGetErrorDescription")
)

// descriptionSize matches the buffer the vendor samples use.
const descriptionSize = 1024

// DLL calls the vendor driver in cifX32dll.dll.
type DLL struct{}

var _ API = DLL{}

// NewDLL loads the vendor driver from the system directory.
func NewDLL() (API, error) {
	if err := modCifx.Load(); err != nil {
		return nil, fmt.Errorf("cifx: load %s: %w", modCifx.Name, err)
	}
	return DLL{}, nil
}

func code(r uintptr) Code {
	return Code(int32(uint32(r)))
}

func (DLL) DriverOpen() (Handle, Code) {
	var h uintptr
	r, _, _ := procDriverOpen.Call(uintptr(unsafe.Pointer(&h)))
	return Handle(h), code(r)
}

func (DLL) DriverClose(driver Handle) Code {
	r, _, _ := procDriverClose.Call(uintptr(driver))
	return code(r)
}

func (DLL) ChannelOpen(driver Handle, board string, channel uint32) (Handle, Code) {
	name, err := windows.BytePtrFromString(board)
	if err != nil {
		return 0, InvalidBoard
	}

	var h uintptr
	r, _, _ := procChannelOpen.Call(
		uintptr(driver),
		uintptr(unsafe.Pointer(name)),
		uintptr(channel),
		uintptr(unsafe.Pointer(&h)),
	)
	return Handle(h), code(r)
}

func (DLL) ChannelClose(channel Handle) Code {
	r, _, _ := procChannelClose.Call(uintptr(channel))
	return code(r)
}

func (DLL) ChannelHostState(channel Handle, cmd uint32, timeoutMs uint32) (uint32, Code) {
	var state uint32
	r, _, _ := procChannelHostState.Call(
		uintptr(channel),
		uintptr(cmd),
		uintptr(unsafe.Pointer(&state)),
		uintptr(timeoutMs),
	)
	return state, code(r)
}

func (DLL) ChannelBusState(channel Handle, cmd uint32, timeoutMs uint32) (uint32, Code) {
	var state uint32
	r, _, _ := procChannelBusState.Call(
		uintptr(channel),
		uintptr(cmd),
		uintptr(unsafe.Pointer(&state)),
		uintptr(timeoutMs),
	)
	return state, code(r)
}

func (DLL) ChannelIORead(channel Handle, area, offset uint32, buf []byte, timeoutMs uint32) Code {
	if len(buf) == 0 {
		return InvalidBufferSize
	}
	r, _, _ := procChannelIORead.Call(
		uintptr(channel),
		uintptr(area),
		uintptr(offset),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(timeoutMs),
	)
	return code(r)
}

func (DLL) ChannelIOWrite(channel Handle, area, offset uint32, buf []byte, timeoutMs uint32) Code {
	if len(buf) == 0 {
		return InvalidBufferSize
	}
	r, _, _ := procChannelIOWrite.Call(
		uintptr(channel),
		uintptr(area),
		uintptr(offset),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(timeoutMs),
	)
	return code(r)
}

func (DLL) ErrorDescription(c Code) string {
	buf := make([]byte, descriptionSize)
	r, _, _ := procDriverGetErrorDescr.Call(
		uintptr(uint32(c)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
	)
	if code(r).Failed() {
		return ""
	}
	return windows.ByteSliceToString(buf)
}
