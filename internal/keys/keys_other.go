//go:build !(darwin && cgo) && !(linux && cgo) && !windows

package keys

import "fmt"

func newPlatformSink() (Sink, error) {
	return nil, fmt.Errorf("%w: no event sink for this build", ErrUnavailable)
}

// Trusted reports false; this build cannot post events at all.
func Trusted(bool) bool { return false }
