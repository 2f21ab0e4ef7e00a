// Package rpcservice exposes a ghost.Session over gRPC (GhostService) and
// over a JSON gateway on the same listener.
package rpcservice

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"go.klb.dev/ghostkey/internal/ghost"
	"go.klb.dev/ghostkey/internal/keys"
)

// MaxReadContext bounds ReadContext requests; every character is one
// synthesized key press.
const MaxReadContext = 4096

// Service implements GhostServer on top of a Session.
type Service struct {
	s       *ghost.Session
	version string
	started time.Time
}

// New returns a Service backed by s.
func New(s *ghost.Session, version string) *Service {
	return &Service{s: s, version: version, started: time.Now()}
}

// InsertImmediate implements GhostService.InsertImmediate.
func (srv *Service) InsertImmediate(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if err := srv.s.InsertImmediate(in.GetValue()); err != nil {
		return nil, toStatus("insert", err)
	}
	return &emptypb.Empty{}, nil
}

// InsertDeferred implements GhostService.InsertDeferred.
func (srv *Service) InsertDeferred(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if err := srv.s.InsertDeferred(in.GetValue()); err != nil {
		return nil, toStatus("insert", err)
	}
	return &emptypb.Empty{}, nil
}

// Accept implements GhostService.Accept.
func (srv *Service) Accept(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if err := srv.s.Accept(); err != nil {
		return nil, toStatus("accept", err)
	}
	return &emptypb.Empty{}, nil
}

// Reject implements GhostService.Reject.
func (srv *Service) Reject(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if err := srv.s.Reject(); err != nil {
		return nil, toStatus("reject", err)
	}
	return &emptypb.Empty{}, nil
}

// ReadContext implements GhostService.ReadContext.
func (srv *Service) ReadContext(ctx context.Context, in *wrapperspb.UInt32Value) (*wrapperspb.StringValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	n := in.GetValue()
	if n > MaxReadContext {
		return nil, status.Errorf(codes.InvalidArgument, "read context: %d exceeds the limit of %d characters", n, MaxReadContext)
	}
	text, err := srv.s.ReadBeforeCaret(int(n))
	if err != nil {
		return nil, toStatus("read context", err)
	}
	return wrapperspb.String(text), nil
}

// Status implements GhostService.Status.
func (srv *Service) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	st := srv.s.State()
	fields := map[string]any{
		"version":               srv.version,
		"keys":                  srv.s.KeysName(),
		"clipboard":             srv.s.ClipboardName(),
		"uptime":                time.Since(srv.started).Round(time.Second).String(),
		"pending":               st.Pending,
		"pending_length":        st.Length,
		"has_snapshot":          st.HasSnapshot,
		"accessibility_trusted": keys.Trusted(false),
	}
	if st.Pending {
		fields["pending_since"] = st.Since.UTC().Format(time.RFC3339)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "status: %v", err)
	}
	return out, nil
}

// toStatus maps a session error onto a gRPC status.
func toStatus(op string, err error) error {
	var code codes.Code
	switch ghost.KindOf(err) {
	case ghost.KindInvalidArgument:
		code = codes.InvalidArgument
	case ghost.KindUnavailable:
		code = codes.Unavailable
	case ghost.KindVerifyTimeout:
		code = codes.DeadlineExceeded
	case ghost.KindSynthesis:
		code = codes.Internal
	case ghost.KindCancelled:
		code = codes.Canceled
	default:
		code = codes.Unknown
	}
	slog.Warn(op+" failed", "code", code, "err", err)
	return status.Error(code, err.Error())
}

// AuthInterceptor validates the bearer token in the request metadata.
// An empty token disables the check.
func AuthInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := auth(ctx, token); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func auth(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}
	if bearer(vals[0]) != token {
		return status.Error(codes.Unauthenticated, "invalid token")
	}
	return nil
}

func bearer(v string) string {
	const prefix = "Bearer "
	if len(v) > len(prefix) && v[:len(prefix)] == prefix {
		return v[len(prefix):]
	}
	return v
}
