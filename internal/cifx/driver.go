// internal/cifx/driver.go
package cifx

import (
	"sync"
	"time"
)

// Driver is an open driver handle.
// It is released exactly once by Close, whatever path the caller takes.
type Driver struct {
	mu     sync.Mutex
	api    API
	handle Handle
	closed bool
}

// OpenDriver acquires the driver handle.
func OpenDriver(api API) (*Driver, error) {
	h, code := api.DriverOpen()
	if code.Failed() {
		return nil, newError(api, OpDriverOpen, code)
	}
	if h == 0 {
		return nil, newError(api, OpDriverOpen, InvalidHandle)
	}
	return &Driver{api: api, handle: h}, nil
}

// Close releases the driver handle. Safe to call more than once.
func (d *Driver) Close() error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if code := d.api.DriverClose(d.handle); code.Failed() {
		return newError(d.api, OpDriverClose, code)
	}
	return nil
}

// ---- channel operations ----

// OpenChannel opens channel index ch on the named board.
// The returned handle may be zero if the driver misbehaves; callers must check.
func (d *Driver) OpenChannel(board string, ch uint32) (Handle, error) {
	h, err := d.driverHandle()
	if err != nil {
		return 0, err
	}

	chHandle, code := d.api.ChannelOpen(h, board, ch)
	if code.Failed() {
		return 0, newError(d.api, OpChannelOpen, code)
	}
	return chHandle, nil
}

func (d *Driver) CloseChannel(ch Handle) error {
	if code := d.api.ChannelClose(ch); code.Failed() {
		return newError(d.api, OpChannelClose, code)
	}
	return nil
}

func (d *Driver) SetHostState(ch Handle, state uint32, timeout time.Duration) error {
	if _, code := d.api.ChannelHostState(ch, state, millis(timeout)); code.Failed() {
		return newError(d.api, OpHostState, code)
	}
	return nil
}

func (d *Driver) SetBusState(ch Handle, state uint32, timeout time.Duration) error {
	if _, code := d.api.ChannelBusState(ch, state, millis(timeout)); code.Failed() {
		return newError(d.api, OpBusState, code)
	}
	return nil
}

// Read fills buf from the given input area.
func (d *Driver) Read(ch Handle, area, offset uint32, buf []byte, timeout time.Duration) error {
	if code := d.api.ChannelIORead(ch, area, offset, buf, millis(timeout)); code.Failed() {
		return newError(d.api, OpIORead, code)
	}
	return nil
}

// Write sends buf to the given output area.
func (d *Driver) Write(ch Handle, area, offset uint32, buf []byte, timeout time.Duration) error {
	if code := d.api.ChannelIOWrite(ch, area, offset, buf, millis(timeout)); code.Failed() {
		return newError(d.api, OpIOWrite, code)
	}
	return nil
}

// Describe returns the driver's description of code.
func (d *Driver) Describe(code Code) string {
	return d.api.ErrorDescription(code)
}

func (d *Driver) driverHandle() (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDriverClosed
	}
	return d.handle, nil
}

func newError(api API, op string, code Code) *Error {
	return &Error{
		Op:          op,
		Code:        code,
		Description: api.ErrorDescription(code),
	}
}

func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d / time.Millisecond)
}
