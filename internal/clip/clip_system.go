//go:build (darwin && cgo) || (linux && cgo) || windows

package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

type systemBackend struct{}

// newSystem returns the native backend. clipboard.Init is called here rather
// than in init() so that processes which never touch the clipboard don't log
// spurious warnings on headless systems.
func newSystem() (Backend, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, initErr)
	}
	return systemBackend{}, nil
}

func (systemBackend) Name() string { return systemName }

func (systemBackend) ReadText() (string, bool, error) {
	b := clipboard.Read(clipboard.FmtText)
	if b == nil {
		return "", false, nil
	}
	return string(b), true, nil
}

func (systemBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (systemBackend) Clear() error { return platformClear() }

func (systemBackend) Close() {}
