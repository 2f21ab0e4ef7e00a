//go:build (linux && cgo) || windows

package keys

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// uinput needs a moment before the new virtual device receives events.
const uinputSettle = 2 * time.Second

var kbdCodes = map[Key]int{
	Return: keybd_event.VK_ENTER,
	V:      keybd_event.VK_V,
	C:      keybd_event.VK_C,
	Delete: keybd_event.VK_BACKSPACE,
	Left:   keybd_event.VK_LEFT,
	Right:  keybd_event.VK_RIGHT,
}

type kbdSink struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

func newPlatformSink() (Sink, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(uinputSettle)
	}
	return &kbdSink{kb: kb}, nil
}

func (s *kbdSink) Name() string { return "keybd_event (" + runtime.GOOS + ")" }

func (s *kbdSink) Press(k Key, mods Modifier, gap time.Duration) error {
	code, ok := kbdCodes[k]
	if !ok {
		return fmt.Errorf("%w: no key code for %s", ErrEvent, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.kb.Clear()
	s.kb.SetKeys(code)
	s.kb.HasSHIFT(mods&ModShift != 0)
	s.kb.HasCTRL(mods&ModPrimary != 0)

	if err := s.kb.Press(); err != nil {
		return fmt.Errorf("%w: key down: %v", ErrEvent, err)
	}
	time.Sleep(gap)
	if err := s.kb.Release(); err != nil {
		// The key is already down: retry the release once.
		if err2 := s.kb.Release(); err2 != nil {
			return fmt.Errorf("%w: key up: %v", ErrEvent, err2)
		}
	}
	time.Sleep(gap)
	return nil
}

// Trusted always reports true; Linux and Windows have no per-process
// accessibility gate for synthetic input.
func Trusted(bool) bool { return true }
