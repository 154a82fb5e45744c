package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SessionStart arms a new recording session.
func (c *Client) SessionStart() (*SessionStartResponse, error) {
	var resp SessionStartResponse
	if err := c.client.Call("Switchlog.SessionStart", SessionStartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionStop stops the active session.
func (c *Client) SessionStop() (*SessionStopResponse, error) {
	var resp SessionStopResponse
	if err := c.client.Call("Switchlog.SessionStop", SessionStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Switchlog.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList returns archived sessions, newest first.
func (c *Client) SessionList(limit int) (*SessionListResponse, error) {
	var resp SessionListResponse
	if err := c.client.Call("Switchlog.SessionList", SessionListRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe returns one archived session with its cut records.
func (c *Client) SessionDescribe(id string) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	if err := c.client.Call("Switchlog.SessionDescribe", SessionDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export returns the EDL text of an archived session.
func (c *Client) Export(id string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Switchlog.Export", ExportRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Switchlog.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
