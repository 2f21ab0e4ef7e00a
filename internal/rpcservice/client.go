package rpcservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls GhostService on cc.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// InsertImmediate inserts text and restores the clipboard right away.
func (c *Client) InsertImmediate(ctx context.Context, text string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("InsertImmediate"), wrapperspb.String(text), new(emptypb.Empty), opts...)
}

// InsertDeferred inserts text and leaves it pending.
func (c *Client) InsertDeferred(ctx context.Context, text string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("InsertDeferred"), wrapperspb.String(text), new(emptypb.Empty), opts...)
}

// Accept keeps the pending ghost text.
func (c *Client) Accept(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("Accept"), new(emptypb.Empty), new(emptypb.Empty), opts...)
}

// Reject deletes the pending ghost text.
func (c *Client) Reject(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("Reject"), new(emptypb.Empty), new(emptypb.Empty), opts...)
}

// ReadContext returns up to n characters before the caret.
func (c *Client) ReadContext(ctx context.Context, n uint32, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("ReadContext"), wrapperspb.UInt32(n), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Status returns the daemon status as a JSON-like map.
func (c *Client) Status(ctx context.Context, opts ...grpc.CallOption) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Status"), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// tokenCreds attaches a bearer token to every call. The daemon only listens
// on a local socket, so transport security is not required.
type tokenCreds string

func (t tokenCreds) GetRequestMetadata(_ context.Context, _ ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (tokenCreds) RequireTransportSecurity() bool { return false }

// WithToken returns a dial option that sends token on every call. An empty
// token returns a no-op option.
func WithToken(token string) grpc.DialOption {
	if token == "" {
		return grpc.EmptyDialOption{}
	}
	return grpc.WithPerRPCCredentials(tokenCreds(token))
}
