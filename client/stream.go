// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/ideaboard/models"
)

const closeWait = time.Second

// Stream is one open realtime connection
type Stream struct {
	conn      *websocket.Conn
	stop      func() bool
	closeOnce sync.Once
}

// Dial opens the realtime channel. Cancelling ctx closes the stream.
func (c *Client) Dial(ctx context.Context) (*Stream, error) {
	u := c.BaseURL.JoinPath("events")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := c.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	s := &Stream{conn: conn}
	s.stop = context.AfterFunc(ctx, func() { s.shutdown() })
	return s, nil
}

// Next blocks until the next frame arrives. Close errors are returned
// unwrapped so callers can inspect the close code.
func (s *Stream) Next() (models.EventEnvelope, error) {
	var env models.EventEnvelope
	if err := s.conn.ReadJSON(&env); err != nil {
		return models.EventEnvelope{}, err
	}
	return env, nil
}

// Close sends a normal close frame and releases the connection
func (s *Stream) Close() error {
	s.stop()
	return s.shutdown()
}

func (s *Stream) shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
		err = s.conn.Close()
	})
	return err
}

// Subscribe streams events to handler until ctx ends, the server closes the
// connection, or handler returns an error. A normal close and a cancelled
// ctx return nil.
func (c *Client) Subscribe(ctx context.Context, handler func(models.EventEnvelope) error) error {
	stream, err := c.Dial(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()
	return stream.pump(ctx, handler)
}

func (s *Stream) pump(ctx context.Context, handler func(models.EventEnvelope) error) error {
	for {
		env, err := s.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := handler(env); err != nil {
			return err
		}
	}
}
