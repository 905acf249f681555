// Package sim is an in-memory stand-in for the vendor driver.
//
// It models one board with one channel. The peer side increments the watchdog word on
// every read and echoes the state bits of the last write into the input area.
// Faults can be injected per driver entry point.
package sim

import (
	"sync"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
	"github.com/tamzrod/profibus-exchange/internal/record"
)

// DefaultBoard is the board name the device answers to.
const DefaultBoard = "cifX0"

const (
	driverHandle cifx.Handle = 0x10
	firstChannel cifx.Handle = 0x100
)

var descriptions = map[cifx.Code]string{
	cifx.NoError:           "No error",
	cifx.InvalidBoard:      "Invalid board name",
	cifx.InvalidChannel:    "Invalid channel number",
	cifx.InvalidHandle:     "Invalid handle",
	cifx.InvalidParameter:  "Invalid parameter",
	cifx.InvalidBufferSize: "Invalid buffer size",
	cifx.FunctionFailed:    "Function failed",
	cifx.NoMoreEntries:     "No more entries",
	cifx.DevNotReady:       "Device not ready",
	cifx.DevNotRunning:     "Device not running",
	cifx.DevNoComFlag:      "Communication flag not set",
}

type fault struct {
	code      cifx.Code
	remaining int // <0 means until cleared
}

// Counters records how often each entry point succeeded.
type Counters struct {
	DriverOpens   int
	DriverCloses  int
	ChannelOpens  int
	ChannelCloses int
	Reads         int
	Writes        int
}

// Device simulates the driver and the field device behind it.
type Device struct {
	mu sync.Mutex

	// Board is the accepted board name.
	Board string
	// ZeroHandle makes ChannelOpen succeed with an invalid handle.
	ZeroHandle bool

	input  [record.InputAreaSize]byte
	output [record.OutputAreaSize]byte

	driverOpen bool
	channels   map[cifx.Handle]*channelState
	next       cifx.Handle

	faults   map[string]*fault
	counters Counters
}

type channelState struct {
	hostReady bool
	busOn     bool
}

var _ cifx.API = (*Device)(nil)

// New creates a device answering to DefaultBoard.
func New() *Device {
	return &Device{
		Board:    DefaultBoard,
		channels: make(map[cifx.Handle]*channelState),
		next:     firstChannel,
		faults:   make(map[string]*fault),
	}
}

// ---- fault injection ----

// Fail makes the next n calls of op return code. n < 0 fails until Clear.
func (d *Device) Fail(op string, code cifx.Code, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = &fault{code: code, remaining: n}
}

// Clear removes all injected faults.
func (d *Device) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = make(map[string]*fault)
}

func (d *Device) injected(op string) cifx.Code {
	f := d.faults[op]
	if f == nil || f.remaining == 0 {
		return cifx.NoError
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return f.code
}

// ---- process image ----

// SetInput places rec into the input area as the master would.
func (d *Device) SetInput(rec record.InputRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// input is sized to the whole read area, so this only fails if the layout outgrows it.
	if err := record.EncodeInput(d.input[:], rec); err != nil {
		panic(err)
	}
}

// Output returns the last record written by the host.
func (d *Device) Output() record.OutputRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, _ := record.DecodeOutput(d.output[:])
	return rec
}

// Counters returns a copy of the call counters.
func (d *Device) Counters() Counters {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters
}

// OpenChannels returns the number of channel handles not yet closed.
func (d *Device) OpenChannels() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

// ---- cifx.API ----

func (d *Device) DriverOpen() (cifx.Handle, cifx.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if code := d.injected(cifx.OpDriverOpen); code.Failed() {
		return 0, code
	}
	d.driverOpen = true
	d.counters.DriverOpens++
	return driverHandle, cifx.NoError
}

func (d *Device) DriverClose(h cifx.Handle) cifx.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	if h != driverHandle || !d.driverOpen {
		return cifx.InvalidHandle
	}
	d.driverOpen = false
	d.counters.DriverCloses++
	return cifx.NoError
}

func (d *Device) ChannelOpen(h cifx.Handle, board string, channel uint32) (cifx.Handle, cifx.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if code := d.injected(cifx.OpChannelOpen); code.Failed() {
		return 0, code
	}
	if h != driverHandle || !d.driverOpen {
		return 0, cifx.InvalidHandle
	}
	if board != d.Board {
		return 0, cifx.InvalidBoard
	}
	if channel != 0 {
		return 0, cifx.InvalidChannel
	}
	d.counters.ChannelOpens++
	if d.ZeroHandle {
		return 0, cifx.NoError
	}

	ch := d.next
	d.next++
	d.channels[ch] = &channelState{}
	return ch, cifx.NoError
}

func (d *Device) ChannelClose(ch cifx.Handle) cifx.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.channels[ch]; !ok {
		return cifx.InvalidHandle
	}
	delete(d.channels, ch)
	d.counters.ChannelCloses++
	return cifx.NoError
}

func (d *Device) ChannelHostState(ch cifx.Handle, cmd uint32, _ uint32) (uint32, cifx.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.channels[ch]
	if !ok {
		return 0, cifx.InvalidHandle
	}
	if code := d.injected(cifx.OpHostState); code.Failed() {
		return 0, code
	}
	st.hostReady = cmd == cifx.HostStateReady
	return cmd, cifx.NoError
}

func (d *Device) ChannelBusState(ch cifx.Handle, cmd uint32, _ uint32) (uint32, cifx.Code) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.channels[ch]
	if !ok {
		return 0, cifx.InvalidHandle
	}
	if code := d.injected(cifx.OpBusState); code.Failed() {
		return 0, code
	}
	if !st.hostReady {
		return 0, cifx.DevNotReady
	}
	st.busOn = cmd == cifx.BusStateOn
	return cmd, cifx.NoError
}

func (d *Device) ChannelIORead(ch cifx.Handle, area, offset uint32, buf []byte, _ uint32) cifx.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.channels[ch]
	if !ok {
		return cifx.InvalidHandle
	}
	if code := d.injected(cifx.OpIORead); code.Failed() {
		return code
	}
	if !st.busOn {
		return cifx.DevNoComFlag
	}
	if area != 0 {
		return cifx.InvalidParameter
	}
	if int(offset)+len(buf) > len(d.input) {
		return cifx.InvalidBufferSize
	}

	// the master bumps its watchdog before every cycle
	wd := record.OffReserved + 2*record.WatchdogIndex
	record.PutWord(d.input[:], wd, record.Word(d.input[:], wd)+1)

	copy(buf, d.input[offset:])
	d.counters.Reads++
	return cifx.NoError
}

func (d *Device) ChannelIOWrite(ch cifx.Handle, area, offset uint32, buf []byte, _ uint32) cifx.Code {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.channels[ch]
	if !ok {
		return cifx.InvalidHandle
	}
	if code := d.injected(cifx.OpIOWrite); code.Failed() {
		return code
	}
	if !st.busOn {
		return cifx.DevNoComFlag
	}
	if area != 0 {
		return cifx.InvalidParameter
	}
	if int(offset)+len(buf) > len(d.output) {
		return cifx.InvalidBufferSize
	}

	copy(d.output[offset:], buf)
	// the master echoes the state words it last received
	copy(d.input[record.OffStateBits1:record.OffYear], d.output[record.OffStateBits1:record.OffYear])
	d.counters.Writes++
	return cifx.NoError
}

func (d *Device) ErrorDescription(code cifx.Code) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return "Unknown error"
}
