package main

import (
	"errors"
	"sync/atomic"

	"go.klb.dev/ghostkey/internal/ghost"
)

// Error codes (must match include/ghostkey.h).
const (
	codeOK              int32 = 0
	codeInvalidHandle   int32 = 1
	codeInvalidArgument int32 = 2
	codeUnavailable     int32 = 3
	codeVerifyTimeout   int32 = 4
	codeSynthesis       int32 = 5
	codeCancelled       int32 = 6
	codeUnknown         int32 = 99
)

var errNullText = errors.New("text is NULL")

// errorCode maps a Go error to a C error code.
func errorCode(err error) int32 {
	if errors.Is(err, errNullText) {
		return codeInvalidArgument
	}
	switch ghost.KindOf(err) {
	case ghost.KindOK:
		return codeOK
	case ghost.KindInvalidArgument:
		return codeInvalidArgument
	case ghost.KindUnavailable:
		return codeUnavailable
	case ghost.KindVerifyTimeout:
		return codeVerifyTimeout
	case ghost.KindSynthesis:
		return codeSynthesis
	case ghost.KindCancelled:
		return codeCancelled
	default:
		return codeUnknown
	}
}

// session is what a C handle refers to: a ghost session plus the code of
// its most recent failure.
type session struct {
	*ghost.Session
	lastErr atomic.Int32
}

// record stores err's code and reports whether err was nil.
func (s *session) record(err error) bool {
	s.lastErr.Store(errorCode(err))
	return err == nil
}
