package scoreboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client talks to a remote score service. It implements Store.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	logger  *slog.Logger
}

func Dial(address string, timeout time.Duration, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}
	return &Client{conn: conn, timeout: timeout, logger: logger}, nil
}

func (c *Client) Add(ctx context.Context, e Entry) (int, error) {
	in, err := entryToProto(e)
	if err != nil {
		return 0, err
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, submitMethod, in, out); err != nil {
		return 0, fromStatus("failed to submit score", err)
	}
	rank := int(out.GetFields()["rank"].GetNumberValue())
	c.logger.Debug("score submitted", slog.String("id", out.GetFields()["id"].GetStringValue()), slog.Int("rank", rank))
	return rank, nil
}

func (c *Client) Top(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, topMethod, wrapperspb.Int32(int32(limit)), out); err != nil {
		return nil, fromStatus("failed to list scores", err)
	}
	return protoToEntries(out)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func fromStatus(msg string, err error) error {
	if s, ok := status.FromError(err); ok && s.Code() == codes.InvalidArgument {
		return fmt.Errorf("%s: %w: %s", msg, ErrInvalidEntry, s.Message())
	}
	return fmt.Errorf("%s: %w", msg, err)
}
