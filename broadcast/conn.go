// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ConnSubscriber forwards hub events to one websocket connection.
// Deliver only enqueues; Run owns all writes to the connection.
type ConnSubscriber struct {
	conn *websocket.Conn
	send chan Event
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewConnSubscriber(conn *websocket.Conn) *ConnSubscriber {
	return &ConnSubscriber{
		conn: conn,
		send: make(chan Event, SubscriberQueueSize),
		done: make(chan struct{}),
	}
}

func (c *ConnSubscriber) Deliver(evt Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrSubscriberClosed
	}

	select {
	case c.send <- evt:
		return nil
	default:
		return ErrSubscriberFull
	}
}

// Close asks Run to send a close frame and return
func (c *ConnSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Run pumps queued events to the peer until the peer disconnects, Close is
// called, or ctx ends. It closes the underlying connection before returning.
// A nil error means the session ended normally.
func (c *ConnSubscriber) Run(ctx context.Context) error {
	defer c.conn.Close()

	readDone := make(chan error, 1)
	go c.readLoop(readDone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(evt); err != nil {
				return fmt.Errorf("write %s: %w", evt.Type, err)
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case err := <-readDone:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err

		case <-c.done:
			c.writeClose(websocket.CloseNormalClosure, "server closing")
			return nil

		case <-ctx.Done():
			c.writeClose(websocket.CloseGoingAway, "server shutting down")
			return ctx.Err()
		}
	}
}

func (c *ConnSubscriber) writeClose(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// readLoop discards inbound frames; it exists to process control frames and
// notice when the peer goes away
func (c *ConnSubscriber) readLoop(done chan<- error) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if errors.Is(err, websocket.ErrCloseSent) {
				err = nil
			}
			done <- err
			return
		}
	}
}
