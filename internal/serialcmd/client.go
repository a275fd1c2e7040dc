// internal/serialcmd/client.go
package serialcmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultWait is the pause between a command and reading its answer.
const DefaultWait = time.Second

// Client exchanges newline-terminated commands and answers over one port.
// Calls are serialized. No retries: callers decide.
type Client struct {
	mu   sync.Mutex
	port Port
	name string
	buf  []byte // bytes read past the last returned line

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Dial opens name through o and wraps it in a Client.
func Dial(o Opener, name string) (*Client, error) {
	if name == "" {
		return nil, &OpenError{Port: name, Reason: "no port selected"}
	}
	p, err := o.Open(name)
	if err != nil {
		return nil, err
	}
	return NewClient(name, p), nil
}

// NewClient wraps an already opened port.
func NewClient(name string, p Port) *Client {
	return &Client{
		port:  p,
		name:  name,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Name is the device the client was opened on.
func (c *Client) Name() string { return c.name }

// Close releases the port.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}

// ---- exchanges ----

// SendAndRead writes cmd + "\n", waits, then returns the next answer line
// (without its terminator). It fails with ErrTimeout when no full line
// arrives within timeout.
func (c *Client) SendAndRead(ctx context.Context, cmd string, wait, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(ctx, cmd, wait); err != nil {
		return "", err
	}
	return c.readLine(ctx, timeout)
}

// SendAndReadAny writes cmd + "\n", waits, and succeeds as soon as any byte
// is received. It returns what was read so far.
func (c *Client) SendAndReadAny(ctx context.Context, cmd string, wait, timeout time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(ctx, cmd, wait); err != nil {
		return nil, err
	}
	return c.readAny(ctx, timeout)
}

// ReadLine returns the next answer line without sending anything.
func (c *Client) ReadLine(ctx context.Context, timeout time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return "", ErrClosed
	}
	return c.readLine(ctx, timeout)
}

// ---- internals (mu held) ----

func (c *Client) send(ctx context.Context, cmd string, wait time.Duration) error {
	if c.port == nil {
		return ErrClosed
	}

	// stale answers from a previous exchange must not be taken for this one
	c.buf = c.buf[:0]
	_ = c.port.ResetInputBuffer()

	if err := writeAll(c.port, []byte(cmd+"\n")); err != nil {
		return &WriteError{Command: cmd, Err: err}
	}
	if err := c.port.Drain(); err != nil {
		return &WriteError{Command: cmd, Err: err}
	}

	if wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) readLine(ctx context.Context, timeout time.Duration) (string, error) {
	deadline := c.now().Add(timeout)
	chunk := make([]byte, 256)

	for {
		if i := bytes.IndexByte(c.buf, '\n'); i >= 0 {
			line := bytes.TrimRight(c.buf[:i], "\r")
			out := string(line)
			blank := len(bytes.TrimSpace(line)) == 0
			c.buf = append(c.buf[:0], c.buf[i+1:]...)
			if blank {
				continue
			}
			return out, nil
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !c.now().Before(deadline) {
			return "", ErrTimeout
		}

		n, err := c.port.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			return "", &ReadError{Err: err}
		}
	}
}

func (c *Client) readAny(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := c.now().Add(timeout)
	chunk := make([]byte, 256)

	for len(c.buf) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !c.now().Before(deadline) {
			return nil, ErrTimeout
		}

		n, err := c.port.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
		}
		if err != nil {
			return nil, &ReadError{Err: err}
		}
	}

	out := append([]byte(nil), c.buf...)
	c.buf = c.buf[:0]
	return out, nil
}

// ---- helpers ----

func writeAll(p Port, b []byte) error {
	for len(b) > 0 {
		n, err := p.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.New("short write")
		}
		b = b[n:]
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
