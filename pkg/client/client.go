// Package client talks to a wordrank server over its msgpack stdin/stdout protocol.
package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

// Error is a failure reported by the server.
type Error struct {
	ID      string
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Client sends one request at a time and waits for its response.
type Client struct {
	mu   sync.Mutex
	enc  *msgpack.Encoder
	dec  *msgpack.Decoder
	next uint64

	in  io.Closer
	cmd *exec.Cmd
}

// New wraps a connection to a running server and waits for its ready signal.
// r carries the server's responses and w its requests.
func New(r io.Reader, w io.Writer) (*Client, error) {
	c := &Client{
		enc: msgpack.NewEncoder(w),
		dec: msgpack.NewDecoder(r),
	}
	if closer, ok := w.(io.Closer); ok {
		c.in = closer
	}

	var ready server.StatusResponse
	if err := c.dec.Decode(&ready); err != nil {
		return nil, fmt.Errorf("waiting for server: %w", err)
	}
	if ready.Status != "ready" {
		return nil, fmt.Errorf("unexpected server status %q", ready.Status)
	}
	return c, nil
}

// Spawn starts the server binary at path with args and connects to it.
// Server logs go to this process's stderr.
func Spawn(path string, args ...string) (*Client, error) {
	cmd := exec.Command(path, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	c, err := New(stdout, stdin)
	if err != nil {
		stdin.Close()
		_ = cmd.Wait()
		return nil, err
	}
	c.cmd = cmd
	return c, nil
}

// Complete asks for up to limit suggestions; 0 uses the server default.
func (c *Client) Complete(prefix string, limit int) (*server.CompletionResponse, error) {
	var resp server.CompletionResponse
	if err := c.roundTrip(server.Request{Action: server.ActionComplete, Prefix: prefix, Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the server's dictionary stats.
func (c *Client) Stats() (suggest.Stats, error) {
	var resp server.StatsResponse
	if err := c.roundTrip(server.Request{Action: server.ActionStats}, &resp); err != nil {
		return suggest.Stats{}, err
	}
	return resp.Stats, nil
}

// Ping checks the server is answering.
func (c *Client) Ping() error {
	var resp server.StatusResponse
	if err := c.roundTrip(server.Request{Action: server.ActionPing}, &resp); err != nil {
		return err
	}
	if resp.Status != "pong" {
		return fmt.Errorf("unexpected ping reply %q", resp.Status)
	}
	return nil
}

// Close ends the request stream, which stops the server, and reaps a spawned process.
func (c *Client) Close() error {
	var err error
	if c.in != nil {
		err = c.in.Close()
	}
	if c.cmd != nil {
		err = errors.Join(err, c.cmd.Wait())
	}
	return err
}

func (c *Client) roundTrip(req server.Request, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	req.ID = "c" + strconv.FormatUint(c.next, 10)
	if err := c.enc.Encode(req); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	raw, err := c.dec.DecodeRaw()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var probe server.ErrorResponse
	if err := msgpack.Unmarshal(raw, &probe); err == nil && probe.Code != 0 {
		return &Error{ID: probe.ID, Code: probe.Code, Message: probe.Error}
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
