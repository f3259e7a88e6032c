package scoreboard

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "blockdrop.scoreboard.ScoreService"

const (
	submitMethod = "/" + serviceName + "/Submit"
	topMethod    = "/" + serviceName + "/Top"
)

// ScoreServer is the gRPC score service.
type ScoreServer interface {
	// Submit stores an entry and answers with its id and rank.
	Submit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Top lists the best entries, the limit defaults to DefaultLimit.
	Top(context.Context, *wrapperspb.Int32Value) (*structpb.ListValue, error)
}

type scoreServer struct {
	store  Store
	logger *slog.Logger
}

func NewServer(store Store, logger *slog.Logger) ScoreServer {
	return &scoreServer{store: store, logger: logger}
}

// Register adds the score service to a gRPC server.
func Register(s grpc.ServiceRegistrar, srv ScoreServer) {
	s.RegisterService(&serviceDesc, srv)
}

func (s *scoreServer) Submit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	e, err := protoToEntry(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	e = e.complete()
	rank, err := s.store.Add(ctx, e)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		s.logger.Error("failed to store score", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to store score")
	}
	s.logger.Info("score submitted", slog.String("id", e.ID), slog.String("name", e.Name), slog.Int("score", e.Score), slog.Int("rank", rank))
	return structpb.NewStruct(map[string]any{"id": e.ID, "rank": rank})
}

func (s *scoreServer) Top(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	entries, err := s.store.Top(ctx, int(in.GetValue()))
	if err != nil {
		s.logger.Error("failed to list scores", slog.String("error", err.Error()))
		return nil, status.Error(codes.Internal, "failed to list scores")
	}
	list, err := entriesToProto(entries)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func submitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoreServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScoreServer).Submit(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func topHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoreServer).Top(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: topMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ScoreServer).Top(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ScoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
		{MethodName: "Top", Handler: topHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blockdrop/scoreboard",
}
