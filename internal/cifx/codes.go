package cifx

// Driver return codes used by this module.
const (
	NoError Code = 0

	InvalidBoard      Code = -0x7FF5FFFE // 0x800A0002
	InvalidChannel    Code = -0x7FF5FFFD // 0x800A0003
	InvalidHandle     Code = -0x7FF5FFFC // 0x800A0004
	InvalidParameter  Code = -0x7FF5FFFB // 0x800A0005
	InvalidBufferSize Code = -0x7FF5FFF9 // 0x800A0007
	FunctionFailed    Code = -0x7FF5FFF7 // 0x800A0009
	NoMoreEntries     Code = -0x7FF5FFEC // 0x800A0014

	DevNotReady   Code = -0x7FF3FFEF // 0x800C0011
	DevNotRunning Code = -0x7FF3FFEE // 0x800C0012
	DevNoComFlag  Code = -0x7FF3FFDF // 0x800C0021
)

// Failed reports whether c is an error code.
func (c Code) Failed() bool {
	return c != NoError
}
