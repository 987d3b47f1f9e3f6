//go:build !linux

package platform

import "fmt"

// X11 is only available on Linux.
type X11 struct{ ViewportProvider }

func newX11Provider(string, int) (*X11, error) {
	return nil, fmt.Errorf("%w: x11 is only supported on linux", ErrUnavailable)
}
