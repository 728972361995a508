// Package rpctransport is a thin wrapper around net/rpc used by both the
// coordinator and the storage node, so that server setup, shutdown and
// deadline-bound client calls look the same across both processes.
package rpctransport

import (
	"net"
	"net/rpc"
	"time"
)

// Server wraps net/rpc.Server with an associated listener so Stop can
// close it cleanly.
type Server struct {
	*rpc.Server
	listener net.Listener
}

// NewServer creates an RPC server bound to addr. The caller registers
// services before calling Serve.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Server{
		Server:   rpc.NewServer(),
		listener: listener,
	}, nil
}

// Addr returns the address the server is actually bound to (useful when
// addr was "host:0").
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections until the listener is closed. Intended to be
// run in its own goroutine.
func (s *Server) Serve() {
	s.Server.Accept(s.listener)
}

// Stop closes the listener, causing Serve to return.
func (s *Server) Stop() error {
	return s.listener.Close()
}

// Client wraps an *rpc.Client with a deadline-bound Call, used for the
// storage node's outbound heartbeats.
type Client struct {
	*rpc.Client
}

// Dial connects to addr.
func Dial(addr string) (*Client, error) {
	c, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// CallWithTimeout performs a synchronous RPC call, failing if it does not
// complete within timeout.
func (c *Client) CallWithTimeout(serviceMethod string, args, reply interface{}, timeout time.Duration) error {
	call := c.Go(serviceMethod, args, reply, make(chan *rpc.Call, 1))

	select {
	case resp := <-call.Done:
		return resp.Error
	case <-time.After(timeout):
		return errTimeout
	}
}
