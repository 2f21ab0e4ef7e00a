//go:build darwin && cgo

package keys

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework CoreFoundation
// #include <ApplicationServices/ApplicationServices.h>
// #include <CoreFoundation/CoreFoundation.h>
// #include <unistd.h>
//
// // ghostkey_press returns 0 on success, 1 if the event source could not be
// // created and 2 if either event could not be created. Both events exist
// // before the first is posted, so a failure never leaves a key held down.
// static int ghostkey_press(CGKeyCode code, CGEventFlags flags, useconds_t gap) {
//     CGEventSourceRef src = CGEventSourceCreate(kCGEventSourceStateCombinedSessionState);
//     if (src == NULL) {
//         return 1;
//     }
//     CGEventRef down = CGEventCreateKeyboardEvent(src, code, true);
//     CGEventRef up = CGEventCreateKeyboardEvent(src, code, false);
//     if (down == NULL || up == NULL) {
//         if (down != NULL) CFRelease(down);
//         if (up != NULL) CFRelease(up);
//         CFRelease(src);
//         return 2;
//     }
//     CGEventSetFlags(down, flags);
//     CGEventSetFlags(up, flags);
//     CGEventPost(kCGHIDEventTap, down);
//     usleep(gap);
//     CGEventPost(kCGHIDEventTap, up);
//     usleep(gap);
//     CFRelease(down);
//     CFRelease(up);
//     CFRelease(src);
//     return 0;
// }
//
// static Boolean ghostkey_trusted(Boolean prompt) {
//     const void *keys[] = { kAXTrustedCheckOptionPrompt };
//     const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
//     CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
//                                                  &kCFTypeDictionaryKeyCallBacks,
//                                                  &kCFTypeDictionaryValueCallBacks);
//     Boolean trusted = AXIsProcessTrustedWithOptions(options);
//     CFRelease(options);
//     return trusted;
// }
import "C"

import (
	"fmt"
	"time"
)

// Carbon virtual key codes (Events.h).
var darwinCodes = map[Key]C.CGKeyCode{
	Return: 0x24,
	V:      0x09,
	C:      0x08,
	Delete: 0x33,
	Left:   0x7B,
	Right:  0x7C,
}

type darwinSink struct{}

func newPlatformSink() (Sink, error) { return darwinSink{}, nil }

func (darwinSink) Name() string { return "macOS CoreGraphics (HID tap)" }

func (darwinSink) Press(k Key, mods Modifier, gap time.Duration) error {
	code, ok := darwinCodes[k]
	if !ok {
		return fmt.Errorf("%w: no key code for %s", ErrEvent, k)
	}
	var flags C.CGEventFlags
	if mods&ModShift != 0 {
		flags |= C.kCGEventFlagMaskShift
	}
	if mods&ModPrimary != 0 {
		flags |= C.kCGEventFlagMaskCommand
	}
	switch C.ghostkey_press(code, flags, C.useconds_t(gap.Microseconds())) {
	case 0:
		return nil
	case 1:
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: CGEventCreateKeyboardEvent returned NULL", ErrEvent)
	}
}

// Trusted reports whether this process may post events. With prompt set,
// macOS shows the Accessibility permission dialog when trust is missing.
func Trusted(prompt bool) bool {
	var p C.Boolean
	if prompt {
		p = 1
	}
	return C.ghostkey_trusted(p) != 0
}
