package node

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"vectorlog/internal/vlog"
)

// Client talks to a remote CausalLog service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for the given address. The connection is
// established lazily on the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Append asks the remote log to stamp and append content for participant.
func (c *Client) Append(ctx context.Context, participant, content string) (vlog.Entry, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"participant": participant,
		"content":     content,
		"request_id":  uuid.NewString(),
	})
	if err != nil {
		return vlog.Entry{}, err
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, appendMethod, req, resp); err != nil {
		return vlog.Entry{}, fromStatus(err)
	}
	return protoToEntry(resp)
}

// List returns the remote log's entries in append order.
func (c *Client) List(ctx context.Context) ([]vlog.Entry, error) {
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, listMethod, &emptypb.Empty{}, resp); err != nil {
		return nil, fromStatus(err)
	}
	return protoToEntries(resp)
}

// Sync invokes the remote sync hook on behalf of fromID. Every current
// server answers with vlog.ErrSyncNotImplemented.
func (c *Client) Sync(ctx context.Context, fromID string) error {
	req, err := structpb.NewStruct(map[string]interface{}{"from_id": fromID})
	if err != nil {
		return err
	}

	err = c.conn.Invoke(ctx, syncMethod, req, &structpb.Struct{})
	if status.Code(err) == codes.Unimplemented {
		return fmt.Errorf("%w: %s", vlog.ErrSyncNotImplemented, status.Convert(err).Message())
	}
	return fromStatus(err)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
