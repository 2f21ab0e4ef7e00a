//go:build !((darwin && cgo) || (linux && cgo) || windows)

package clip

import "fmt"

func newSystem() (Backend, error) {
	return nil, fmt.Errorf("%w: built without a native clipboard", ErrUnavailable)
}
