package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/meetmind/meetmind/internal/config"
)

// maxLine bounds one NDJSON line in either direction.
const maxLine = 1024 * 1024

// ErrConnClosed is returned when the daemon hangs up mid-exchange.
var ErrConnClosed = errors.New("daemon connection closed")

// SocketPath returns the daemon socket path, honoring MEETMIND_SOCKET.
func SocketPath() string {
	if p := os.Getenv("MEETMIND_SOCKET"); p != "" {
		return p
	}
	return config.DefaultConfig().SocketPath
}

// Client speaks the NDJSON protocol to a meetmind daemon. One client carries
// either request/response commands or, after Subscribe, an event stream.
type Client struct {
	// Timeout bounds each SendCommand round trip. Zero waits indefinitely.
	Timeout time.Duration

	conn net.Conn
	in   *bufio.Scanner
	mu   sync.Mutex
}

// Connect dials the daemon Unix socket.
func Connect(socketPath string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	in := bufio.NewScanner(conn)
	in.Buffer(make([]byte, 64*1024), maxLine)
	return &Client{conn: conn, in: in}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// SendCommand writes one command and waits for its response line.
func (c *Client) SendCommand(cmd Command) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.Timeout))
		defer c.conn.SetDeadline(time.Time{})
	}

	line, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s: %w", cmd.Cmd, err)
	}
	if _, err := c.conn.Write(append(line, '\n')); err != nil {
		return Response{}, fmt.Errorf("send %s: %w", cmd.Cmd, err)
	}

	var resp Response
	if err := c.next(&resp); err != nil {
		return Response{}, fmt.Errorf("%s response: %w", cmd.Cmd, err)
	}
	return resp, nil
}

// Subscribe turns this connection into an event stream for the named events,
// or every event when none are given. Use a separate client for commands.
func (c *Client) Subscribe(events ...string) error {
	resp, err := c.SendCommand(Command{Cmd: CmdSubscribe, Events: events})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("subscribe: %s", resp.Error)
	}
	return nil
}

// ReadEvent blocks until the next event arrives on a subscribed connection.
func (c *Client) ReadEvent() (Event, error) {
	var ev Event
	if err := c.next(&ev); err != nil {
		return Event{}, fmt.Errorf("event: %w", err)
	}
	return ev, nil
}

// next decodes the next line into v.
func (c *Client) next(v any) error {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return ErrConnClosed
	}
	return json.Unmarshal(c.in.Bytes(), v)
}
