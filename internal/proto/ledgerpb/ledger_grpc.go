// Package ledgerpb describes the aichopaicho.v1.Ledger gRPC service.
//
// Every request and response is a google.protobuf.Struct, so the service is
// declared by hand instead of through protoc. Keys used in each message are
// listed in messages.go.
package ledgerpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "aichopaicho.v1.Ledger"

const (
	Ledger_Register_FullMethodName         = "/aichopaicho.v1.Ledger/Register"
	Ledger_GetSalt_FullMethodName          = "/aichopaicho.v1.Ledger/GetSalt"
	Ledger_Login_FullMethodName            = "/aichopaicho.v1.Ledger/Login"
	Ledger_RefreshToken_FullMethodName     = "/aichopaicho.v1.Ledger/RefreshToken"
	Ledger_GetDocument_FullMethodName      = "/aichopaicho.v1.Ledger/GetDocument"
	Ledger_SetMergeDocument_FullMethodName = "/aichopaicho.v1.Ledger/SetMergeDocument"
	Ledger_ScanCollection_FullMethodName   = "/aichopaicho.v1.Ledger/ScanCollection"
)

// LedgerClient is the client API for the Ledger service.
type LedgerClient interface {
	Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSalt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SetMergeDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ScanCollection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type ledgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) LedgerClient {
	return &ledgerClient{cc}
}

func (c *ledgerClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_Register_FullMethodName, in, opts)
}

func (c *ledgerClient) GetSalt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_GetSalt_FullMethodName, in, opts)
}

func (c *ledgerClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_Login_FullMethodName, in, opts)
}

func (c *ledgerClient) RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_RefreshToken_FullMethodName, in, opts)
}

func (c *ledgerClient) GetDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_GetDocument_FullMethodName, in, opts)
}

func (c *ledgerClient) SetMergeDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_SetMergeDocument_FullMethodName, in, opts)
}

func (c *ledgerClient) ScanCollection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Ledger_ScanCollection_FullMethodName, in, opts)
}

// LedgerServer is the server API for the Ledger service. Implementations
// must embed UnimplementedLedgerServer.
type LedgerServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSalt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetMergeDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ScanCollection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedLedgerServer()
}

type UnimplementedLedgerServer struct{}

func (UnimplementedLedgerServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedLedgerServer) GetSalt(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedLedgerServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedLedgerServer) RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedLedgerServer) GetDocument(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDocument not implemented")
}
func (UnimplementedLedgerServer) SetMergeDocument(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SetMergeDocument not implemented")
}
func (UnimplementedLedgerServer) ScanCollection(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ScanCollection not implemented")
}
func (UnimplementedLedgerServer) mustEmbedUnimplementedLedgerServer() {}

func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&Ledger_ServiceDesc, srv)
}

type call func(LedgerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, fn call) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(LedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(LedgerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Ledger_ServiceDesc is the grpc.ServiceDesc for the Ledger service.
var Ledger_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(Ledger_Register_FullMethodName, LedgerServer.Register)},
		{MethodName: "GetSalt", Handler: unaryHandler(Ledger_GetSalt_FullMethodName, LedgerServer.GetSalt)},
		{MethodName: "Login", Handler: unaryHandler(Ledger_Login_FullMethodName, LedgerServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(Ledger_RefreshToken_FullMethodName, LedgerServer.RefreshToken)},
		{MethodName: "GetDocument", Handler: unaryHandler(Ledger_GetDocument_FullMethodName, LedgerServer.GetDocument)},
		{MethodName: "SetMergeDocument", Handler: unaryHandler(Ledger_SetMergeDocument_FullMethodName, LedgerServer.SetMergeDocument)},
		{MethodName: "ScanCollection", Handler: unaryHandler(Ledger_ScanCollection_FullMethodName, LedgerServer.ScanCollection)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aichopaicho/v1/ledger.proto",
}
