package rpcservice

import (
	"context"
	"net/http"
	"strconv"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NewGateway returns an HTTP mux that serves GhostService as JSON:
//
//	POST /v1/insert   {"text": "...", "deferred": true}
//	POST /v1/accept
//	POST /v1/reject
//	GET  /v1/context?n=40
//	GET  /v1/status
//
// Requests call srv directly; token, when set, is checked against the
// Authorization header.
func NewGateway(srv GhostServer, token string) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux(
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, &gwruntime.JSONPb{
			MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
			UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
		}),
	)

	g := &gateway{srv: srv, mux: mux, token: token}
	routes := []struct {
		method, path string
		h            gwruntime.HandlerFunc
	}{
		{http.MethodPost, "/v1/insert", g.insert},
		{http.MethodPost, "/v1/accept", g.accept},
		{http.MethodPost, "/v1/reject", g.reject},
		{http.MethodGet, "/v1/context", g.readContext},
		{http.MethodGet, "/v1/status", g.status},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.path, g.wrap(rt.h)); err != nil {
			return nil, err
		}
	}
	return mux, nil
}

type gateway struct {
	srv   GhostServer
	mux   *gwruntime.ServeMux
	token string
}

func (g *gateway) wrap(h gwruntime.HandlerFunc) gwruntime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		if err := auth(g.incoming(r), g.token); err != nil {
			g.fail(w, r, err)
			return
		}
		h(w, r, params)
	}
}

// incoming carries the Authorization header into gRPC metadata so that the
// same check serves both transports.
func (g *gateway) incoming(r *http.Request) context.Context {
	md := metadata.MD{}
	if v := r.Header.Get("Authorization"); v != "" {
		md.Set("authorization", v)
	}
	return metadata.NewIncomingContext(r.Context(), md)
}

func (g *gateway) insert(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	inbound, _ := gwruntime.MarshalerForRequest(g.mux, r)
	var body structpb.Struct
	if err := inbound.NewDecoder(r.Body).Decode(&body); err != nil {
		g.fail(w, r, status.Errorf(codes.InvalidArgument, "insert: decode body: %v", err))
		return
	}
	field, ok := body.GetFields()["text"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		g.fail(w, r, status.Error(codes.InvalidArgument, "insert: text must be a string"))
		return
	}
	text := wrapperspb.String(field.StringValue)

	var err error
	if body.GetFields()["deferred"].GetBoolValue() {
		_, err = g.srv.InsertDeferred(r.Context(), text)
	} else {
		_, err = g.srv.InsertImmediate(r.Context(), text)
	}
	g.reply(w, r, &emptypb.Empty{}, err)
}

func (g *gateway) accept(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	out, err := g.srv.Accept(r.Context(), &emptypb.Empty{})
	g.reply(w, r, out, err)
}

func (g *gateway) reject(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	out, err := g.srv.Reject(r.Context(), &emptypb.Empty{})
	g.reply(w, r, out, err)
}

func (g *gateway) readContext(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	n, err := strconv.ParseUint(r.URL.Query().Get("n"), 10, 32)
	if err != nil {
		g.fail(w, r, status.Errorf(codes.InvalidArgument, "read context: n: %v", err))
		return
	}
	out, err := g.srv.ReadContext(r.Context(), wrapperspb.UInt32(uint32(n)))
	g.reply(w, r, out, err)
}

func (g *gateway) status(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	out, err := g.srv.Status(r.Context(), &emptypb.Empty{})
	g.reply(w, r, out, err)
}

func (g *gateway) reply(w http.ResponseWriter, r *http.Request, out proto.Message, err error) {
	if err != nil {
		g.fail(w, r, err)
		return
	}
	_, outbound := gwruntime.MarshalerForRequest(g.mux, r)
	gwruntime.ForwardResponseMessage(serverContext(r), g.mux, outbound, w, r, out)
}

func (g *gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := gwruntime.MarshalerForRequest(g.mux, r)
	gwruntime.HTTPError(serverContext(r), g.mux, outbound, w, r, err)
}

// serverContext carries the empty ServerMetadata the runtime expects from
// generated handlers.
func serverContext(r *http.Request) context.Context {
	return gwruntime.NewServerMetadataContext(r.Context(), gwruntime.ServerMetadata{})
}
