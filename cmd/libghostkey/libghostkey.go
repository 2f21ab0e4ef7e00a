// Command libghostkey builds the ghostkey C ABI:
//
//	go build -buildmode=c-shared -o libghostkey.so ./cmd/libghostkey
//
// The host creates a session handle, calls the insert/accept/reject/read
// functions on it from one thread at a time, and frees it when done. See
// include/ghostkey.h.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"log/slog"
	"os"
	"sync"
	"unsafe"

	"github.com/spf13/viper"

	"go.klb.dev/ghostkey/internal/config"
	"go.klb.dev/ghostkey/internal/ghost"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/logging"
)

// EnvConfig names a config file to use instead of the search path.
const EnvConfig = "GHOSTKEY_CONFIG"

var (
	initOnce sync.Once
	libCfg   config.Config
)

// libInit sets up logging from the environment and loads the config once per
// process. A broken config is logged and the defaults are used.
func libInit() config.Config {
	initOnce.Do(func() {
		logging.SetupFromEnv()

		v := viper.New()
		cfg, err := func() (config.Config, error) {
			if err := config.Discover(v, os.Getenv(EnvConfig)); err != nil {
				return config.Config{}, err
			}
			return config.Load(v)
		}()
		if err != nil {
			slog.Error("ghostkey: using default config", "err", err)
			cfg = config.Default()
		}
		libCfg = cfg
	})
	return libCfg
}

func lookup(h C.uint64_t) (*session, bool) {
	s, ok := getHandleTyped[*session](uint64(h))
	if !ok {
		slog.Warn("ghostkey: invalid session handle", "handle", uint64(h))
	}
	return s, ok
}

//export ghostkey_session_new
func ghostkey_session_new() C.uint64_t {
	s, err := ghost.Open(libInit())
	if err != nil {
		slog.Error("ghostkey: open session", "err", err)
		return 0
	}
	return C.uint64_t(newHandle(&session{Session: s}))
}

//export ghostkey_session_free
func ghostkey_session_free(h C.uint64_t) {
	if s, ok := freeHandleTyped[*session](uint64(h)); ok {
		s.Close()
	}
}

func withText(h C.uint64_t, text *C.char, op func(*ghost.Session, string) error) C.bool {
	s, ok := lookup(h)
	if !ok {
		return false
	}
	if text == nil {
		return C.bool(s.record(errNullText))
	}
	return C.bool(s.record(op(s.Session, C.GoString(text))))
}

//export ghostkey_insert_ghost_text
func ghostkey_insert_ghost_text(h C.uint64_t, text *C.char) C.bool {
	return withText(h, text, (*ghost.Session).InsertImmediate)
}

//export ghostkey_insert_ghost_text_deferred
func ghostkey_insert_ghost_text_deferred(h C.uint64_t, text *C.char) C.bool {
	return withText(h, text, (*ghost.Session).InsertDeferred)
}

//export ghostkey_accept_ghost_text
func ghostkey_accept_ghost_text(h C.uint64_t) C.bool {
	s, ok := lookup(h)
	if !ok {
		return false
	}
	return C.bool(s.record(s.Accept()))
}

//export ghostkey_reject_ghost_text
func ghostkey_reject_ghost_text(h C.uint64_t) C.bool {
	s, ok := lookup(h)
	if !ok {
		return false
	}
	return C.bool(s.record(s.Reject()))
}

//export ghostkey_read_cursor_context
func ghostkey_read_cursor_context(h C.uint64_t, n C.size_t) *C.char {
	s, ok := lookup(h)
	if !ok {
		return nil
	}
	const maxChars = 1 << 16
	text, err := s.ReadBeforeCaret(int(min(uint64(n), maxChars)))
	if !s.record(err) {
		return nil
	}
	return C.CString(text)
}

//export ghostkey_free_string
func ghostkey_free_string(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export ghostkey_last_error
func ghostkey_last_error(h C.uint64_t) C.int {
	s, ok := getHandleTyped[*session](uint64(h))
	if !ok {
		return C.int(codeInvalidHandle)
	}
	return C.int(s.lastErr.Load())
}

//export ghostkey_accessibility_trusted
func ghostkey_accessibility_trusted(prompt C.bool) C.bool {
	libInit()
	return C.bool(keys.Trusted(bool(prompt)))
}
