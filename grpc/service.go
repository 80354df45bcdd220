package palletsgrpc

import (
	"context"

	"github.com/blockberries/pallets/types"
	"google.golang.org/grpc"
)

const serviceName = "pallets.v1.RuntimeService"

// RuntimeServiceServer is the server side of the runtime service.
type RuntimeServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.HandshakeResponse, error)
	CheckTx(context.Context, *CheckTxRequest) (*types.GateVerdict, error)
	ExecuteBlock(context.Context, *types.FinalizedBlock) (*types.BlockOutcome, error)
	Commit(context.Context, *CommitRequest) (*types.CommitResult, error)
	Query(context.Context, *types.StateQuery) (*types.StateQueryResult, error)
	Simulate(context.Context, *SimulateRequest) (*types.TxOutcome, error)
}

// RegisterRuntimeServiceServer registers srv on s.
func RegisterRuntimeServiceServer(s grpc.ServiceRegistrar, srv RuntimeServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary builds a method handler decoding into a fresh Req and calling
// call. Interceptors are honoured.
func unary[Req any, Resp any](method string, call func(RuntimeServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RuntimeServiceServer), ctx, req)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, r any) (any, error) {
				return call(srv.(RuntimeServiceServer), ctx, r.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RuntimeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Handshake", RuntimeServiceServer.Handshake),
		unary("CheckTx", RuntimeServiceServer.CheckTx),
		unary("ExecuteBlock", RuntimeServiceServer.ExecuteBlock),
		unary("Commit", RuntimeServiceServer.Commit),
		unary("Query", RuntimeServiceServer.Query),
		unary("Simulate", RuntimeServiceServer.Simulate),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pallets/v1/runtime.cram",
}
