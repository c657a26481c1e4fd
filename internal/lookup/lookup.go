// Package lookup defines the read-only diary.v1.DiaryLookup gRPC service.
// Messages are protobuf well-known types, so no generated code is needed.
//
// Methods:
//
//	GetUser(Int64Value) returns Struct{id, username, email}
//	ListDiary(Int64Value) returns ListValue of Struct{id, user_id, movie_id, status_id, status, rating, review}
//	GetStats(Int64Value) returns Struct{total, planned, watching, watched}
//	HasEntry(Struct{user_id, movie_id}) returns BoolValue
package lookup

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "diary.v1.DiaryLookup"

const (
	getUserMethod   = "/" + ServiceName + "/GetUser"
	listDiaryMethod = "/" + ServiceName + "/ListDiary"
	getStatsMethod  = "/" + ServiceName + "/GetStats"
	hasEntryMethod  = "/" + ServiceName + "/HasEntry"
)

// DiaryLookupServer is implemented by the gRPC server.
type DiaryLookupServer interface {
	GetUser(ctx context.Context, userID *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListDiary(ctx context.Context, userID *wrapperspb.Int64Value) (*structpb.ListValue, error)
	GetStats(ctx context.Context, userID *wrapperspb.Int64Value) (*structpb.Struct, error)
	HasEntry(ctx context.Context, pair *structpb.Struct) (*wrapperspb.BoolValue, error)
}

// RegisterDiaryLookupServer attaches srv to s.
func RegisterDiaryLookupServer(s grpc.ServiceRegistrar, srv DiaryLookupServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryInt64Handler[R any](fullMethod string, call func(DiaryLookupServer, context.Context, *wrapperspb.Int64Value) (R, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.Int64Value)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DiaryLookupServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(DiaryLookupServer), ctx, req.(*wrapperspb.Int64Value))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func hasEntryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiaryLookupServer).HasEntry(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: hasEntryMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiaryLookupServer).HasEntry(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc describes diary.v1.DiaryLookup for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiaryLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetUser",
			Handler:    unaryInt64Handler(getUserMethod, DiaryLookupServer.GetUser),
		},
		{
			MethodName: "ListDiary",
			Handler:    unaryInt64Handler(listDiaryMethod, DiaryLookupServer.ListDiary),
		},
		{
			MethodName: "GetStats",
			Handler:    unaryInt64Handler(getStatsMethod, DiaryLookupServer.GetStats),
		},
		{
			MethodName: "HasEntry",
			Handler:    hasEntryHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diary/v1/lookup.proto",
}

// DiaryLookupClient is the raw client stub.
type DiaryLookupClient interface {
	GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListDiary(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetStats(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	HasEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type diaryLookupClient struct {
	cc grpc.ClientConnInterface
}

func NewDiaryLookupClient(cc grpc.ClientConnInterface) DiaryLookupClient {
	return &diaryLookupClient{cc: cc}
}

func (c *diaryLookupClient) GetUser(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getUserMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryLookupClient) ListDiary(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listDiaryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryLookupClient) GetStats(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryLookupClient) HasEntry(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, hasEntryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
