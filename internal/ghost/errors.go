package ghost

import (
	"context"
	"errors"

	"go.klb.dev/ghostkey/internal/clip"
	"go.klb.dev/ghostkey/internal/keys"
	"go.klb.dev/ghostkey/internal/mediator"
)

// Kind classifies an error for callers that only get a code across a
// process or language boundary.
type Kind int

const (
	KindOK Kind = iota
	KindInvalidArgument
	KindUnavailable
	KindVerifyTimeout
	KindSynthesis
	KindCancelled
	KindUnknown Kind = 99
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInvalidArgument:
		return "invalid argument"
	case KindUnavailable:
		return "resource unavailable"
	case KindVerifyTimeout:
		return "verification timeout"
	case KindSynthesis:
		return "synthesis failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// KindOf maps err onto the error taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidText):
		return KindInvalidArgument
	case errors.Is(err, keys.ErrUnavailable), errors.Is(err, clip.ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, mediator.ErrVerifyTimeout):
		return KindVerifyTimeout
	case errors.Is(err, keys.ErrEvent):
		return KindSynthesis
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindUnknown
	}
}
