package palletsgrpc

import (
	"context"
	"net"

	"github.com/blockberries/pallets"
	"github.com/blockberries/pallets/server"
	"github.com/blockberries/pallets/types"
	"google.golang.org/grpc"
)

var _ RuntimeServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a pallet application over gRPC.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer wraps app. Options are passed to the underlying server.
func NewGRPCServer(app pallets.Lifecycle, opts ...server.Option) *GRPCServer {
	return &GRPCServer{srv: server.New(app, opts...)}
}

// Register adds the runtime service to gs.
func (s *GRPCServer) Register(gs grpc.ServiceRegistrar) {
	RegisterRuntimeServiceServer(gs, s)
}

// Serve runs a new gRPC server on lis until it fails or is stopped.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(append(opts, grpc.ForceServerCodec(CramberryCodec{}))...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Server returns the underlying server.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.HandshakeResponse, error) {
	resp, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &resp, nil
}

func (s *GRPCServer) CheckTx(ctx context.Context, req *CheckTxRequest) (*types.GateVerdict, error) {
	verdict, err := s.srv.CheckTx(ctx, req.Tx, req.Context)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &verdict, nil
}

func (s *GRPCServer) ExecuteBlock(ctx context.Context, block *types.FinalizedBlock) (*types.BlockOutcome, error) {
	outcome, err := s.srv.ExecuteBlock(ctx, *block)
	if err != nil {
		if _, ok := pallets.IsBlockNumberMismatch(err); ok {
			setRejectedTrailer(ctx, outcome)
		}
		return nil, toStatus(ctx, err)
	}
	return &outcome, nil
}

func (s *GRPCServer) Commit(ctx context.Context, _ *CommitRequest) (*types.CommitResult, error) {
	result, err := s.srv.Commit(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &result, nil
}

func (s *GRPCServer) Query(ctx context.Context, req *types.StateQuery) (*types.StateQueryResult, error) {
	result, err := s.srv.Query(ctx, *req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &result, nil
}

func (s *GRPCServer) Simulate(ctx context.Context, req *SimulateRequest) (*types.TxOutcome, error) {
	outcome, err := s.srv.Simulate(ctx, req.Tx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &outcome, nil
}
