//go:build !windows

package cifx

// NewDLL reports that the vendor driver cannot be loaded on this platform.
func NewDLL() (API, error) {
	return nil, ErrUnsupportedPlatform
}
