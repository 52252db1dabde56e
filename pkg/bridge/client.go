package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Client implements Bridge over a line-delimited JSON stream.
type Client struct {
	w   io.Writer
	wmu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Message
	err     error

	subsMu sync.Mutex
	subs   map[int]func(string)
	nextID int

	done chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogSubscriber registers fn before the read loop starts so no early log
// line is missed.
func WithLogSubscriber(fn func(string)) ClientOption {
	return func(c *Client) {
		c.subs[c.nextID] = fn
		c.nextID++
	}
}

// NewClient starts reading messages from r. Requests are written to w.
func NewClient(r io.Reader, w io.Writer, opts ...ClientOption) *Client {
	c := &Client{
		w:       w,
		pending: make(map[string]chan Message),
		subs:    make(map[int]func(string)),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop(r)
	return c
}

// Done is closed once the helper stream ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the stream ended, if it did.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			slog.Debug("Ignoring malformed helper message", "line", string(line), "error", err)
			continue
		}

		if msg.Event != "" {
			if msg.Event == EventLog {
				c.publish(msg.Payload)
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		if !ok {
			slog.Debug("Dropping response for unknown request", "id", msg.ID)
			continue
		}
		ch <- msg
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	c.shutdown(fmt.Errorf("%w: %w", ErrClosed, err))
}

func (c *Client) shutdown(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	close(c.done)
}

func (c *Client) publish(line string) {
	c.subsMu.Lock()
	subs := make([]func(string), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range subs {
		fn(line)
	}
}

// SubscribeLogs implements Bridge.
func (c *Client) SubscribeLogs(fn func(string)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

// call sends one request and waits for its response. result may be nil.
func (c *Client) call(ctx context.Context, session, command string, result any, args ...string) error {
	req := Request{
		ID:      uuid.NewString(),
		Command: command,
		Session: session,
		Args:    args,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	ch := make(chan Message, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	slog.Debug("Helper request", "command", command, "session", session, "id", req.ID)

	c.wmu.Lock()
	_, err = c.w.Write(append(data, '\n'))
	c.wmu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	select {
	case <-ctx.Done():
		c.forget(req.ID)
		return ctx.Err()
	case msg, ok := <-ch:
		if !ok {
			return c.Err()
		}
		if msg.Error != "" {
			return &RemoteError{Command: command, Message: msg.Error}
		}
		if result == nil || len(msg.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(msg.Result, result); err != nil {
			return fmt.Errorf("unmarshaling %s result: %w", command, err)
		}
		return nil
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// CreateSession implements Bridge.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	var id string
	if err := c.call(ctx, "", CmdCreateSession, &id); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s: helper returned an empty session id", CmdCreateSession)
	}
	return &remoteSession{id: id, client: c}, nil
}

func (c *Client) IsTargetRunning(ctx context.Context) (bool, error) {
	var running bool
	err := c.call(ctx, "", CmdIsTargetRunning, &running)
	return running, err
}

func (c *Client) KillTarget(ctx context.Context) error {
	return c.call(ctx, "", CmdKillTarget, nil)
}

func (c *Client) LaunchTarget(ctx context.Context) error {
	return c.call(ctx, "", CmdLaunchTarget, nil)
}

func (c *Client) WaitUntilTargetEnded(ctx context.Context) error {
	return c.call(ctx, "", CmdWaitUntilTargetEnded, nil)
}

func (c *Client) InstallBasePath(ctx context.Context) (string, error) {
	var path string
	err := c.call(ctx, "", CmdGetBasePath, &path)
	return path, err
}

type remoteSession struct {
	id     string
	client *Client
}

func (s *remoteSession) ID() string { return s.id }

func (s *remoteSession) SubmitPatch(ctx context.Context, archive, innerPath, script string) error {
	return s.client.call(ctx, s.id, CmdSubmitPatch, nil, archive, innerPath, script)
}

func (s *remoteSession) SubmitMainScriptPatch(ctx context.Context, archive, subject, script string) error {
	return s.client.call(ctx, s.id, CmdSubmitMainScriptPatch, nil, archive, subject, script)
}

func (s *remoteSession) Commit(ctx context.Context, archive string) error {
	return s.client.call(ctx, s.id, CmdApplyPatches, nil, archive)
}

// BackupExists accepts a boolean result or its string form.
func (s *remoteSession) BackupExists(ctx context.Context, fullPath string) (bool, error) {
	var raw json.RawMessage
	if err := s.client.call(ctx, s.id, CmdBackupExists, &raw, fullPath); err != nil {
		return false, err
	}
	var exists bool
	if err := json.Unmarshal(raw, &exists); err == nil {
		return exists, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return false, fmt.Errorf("unexpected %s result: %s", CmdBackupExists, raw)
	}
	exists, err := strconv.ParseBool(text)
	if err != nil {
		return false, fmt.Errorf("unexpected %s result: %q", CmdBackupExists, text)
	}
	return exists, nil
}

func (s *remoteSession) RestoreBackup(ctx context.Context, fullPath string) error {
	return s.client.call(ctx, s.id, CmdRestoreBackup, nil, fullPath)
}

func (s *remoteSession) CreateBackup(ctx context.Context, fullPath string) error {
	return s.client.call(ctx, s.id, CmdCreateBackup, nil, fullPath)
}
