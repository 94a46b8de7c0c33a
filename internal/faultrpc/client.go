package faultrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/danielpatrickdp/falselabel/internal/faults"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// #region client-struct
// Client is a faults.Counter backed by a remote FaultCounter service.
type Client struct {
	conn    *grpc.ClientConn
	client  FaultServiceClient
	timeout time.Duration
}

// #endregion client-struct

// #region constructor
// NewClient connects to a fault counting server. timeout bounds each call
// (zero disables it); maxMsgBytes raises the gRPC message limit for large fields.
func NewClient(addr string, timeout time.Duration, maxMsgBytes int) (*Client, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(maxMsgBytes),
			grpc.MaxCallRecvMsgSize(maxMsgBytes),
		))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		client:  NewFaultServiceClient(conn),
		timeout: timeout,
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc FaultServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region count-faults
// CountFaults implements faults.Counter. Transport failures are reported as
// faults.StatusTransport; service failures keep the server's status code.
func (c *Client) CountFaults(ctx context.Context, req faults.Request) (faults.Counts, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CountFaults(ctx, encodeRequest(req))
	if err != nil {
		st := status.Convert(err)
		return faults.Counts{}, fmt.Errorf("count faults rpc: %w", &faults.Error{
			Code: faults.StatusTransport,
			Msg:  fmt.Sprintf("%s: %s", st.Code(), st.Message()),
		})
	}
	counts, err := decodeResponse(resp)
	if err != nil {
		return faults.Counts{}, fmt.Errorf("count faults remote: %w", err)
	}
	return counts, nil
}

// #endregion count-faults
