// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/ideaboard/models"
)

// SubscriberQueueSize is the number of undelivered events a subscriber may
// hold before it is considered too slow and dropped
const SubscriberQueueSize = 64

var (
	ErrSubscriberClosed = errors.New("subscriber closed")
	ErrSubscriberFull   = errors.New("subscriber queue full")
)

type SubscriberID uint64

type Event struct {
	Type      models.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      any              `json:"data"`
}

func NewEvent(eventType models.EventType, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Subscriber receives events from the Hub. Deliver must not block.
// Close must be idempotent.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

// ChannelError reports a failed delivery to one subscriber
type ChannelError struct {
	Subscriber SubscriberID
	Type       models.EventType
	Err        error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("deliver %s to subscriber %d: %v", e.Type, e.Subscriber, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Hub is the single process-wide publish channel. Construct one with NewHub
// at start-up and share it; it lives as long as the process.
type Hub struct {
	subscribers map[SubscriberID]Subscriber
	lastID      SubscriberID
	mu          sync.RWMutex
	metrics     *hubMetrics
	logger      *slog.Logger
}

func NewHub(promRegistry prometheus.Registerer, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		subscribers: make(map[SubscriberID]Subscriber),
		logger:      logger,
	}
	if promRegistry != nil {
		h.initMetrics(promRegistry)
	}
	return h
}

// channelSubscriber is the in-memory subscriber used by Subscribe.
// Deliver never blocks: a full buffer is reported as ErrSubscriberFull.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{ch: make(chan Event, buffer)}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	// Read lock keeps Close from closing the channel mid-send
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrSubscriberClosed
	}

	select {
	case c.ch <- evt:
		return nil
	default:
		return ErrSubscriberFull
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Subscribe returns a buffered channel that receives every published event.
// The channel is closed on Unsubscribe, Stop, or when the subscriber falls
// SubscriberQueueSize events behind.
func (h *Hub) Subscribe() (SubscriberID, <-chan Event) {
	sub := newChannelSubscriber(SubscriberQueueSize)
	id := h.Register(sub)
	return id, sub.ch
}

// Register adds a network-backed subscriber and returns its id
func (h *Hub) Register(sub Subscriber) SubscriberID {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	id := h.lastID
	h.subscribers[id] = sub
	if h.metrics != nil {
		h.metrics.subscribers.Inc()
	}
	return id
}

// Unsubscribe removes and closes a subscriber. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id SubscriberID) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
		if h.metrics != nil {
			h.metrics.subscribers.Dec()
		}
	}
	h.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// Len returns the number of connected subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers evt to a snapshot of the current subscribers.
// With no subscribers it is a no-op. Subscribers that fail delivery are
// dropped; their failures are returned joined as *ChannelError values.
func (h *Hub) Publish(evt Event) error {
	type subItem struct {
		id  SubscriberID
		sub Subscriber
	}

	// Build the snapshot inside the read lock, deliver outside it
	h.mu.RLock()
	subList := make([]subItem, 0, len(h.subscribers))
	for id, sub := range h.subscribers {
		subList = append(subList, subItem{id: id, sub: sub})
	}
	h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	}

	var errs []error
	for _, item := range subList {
		var deliverErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					deliverErr = fmt.Errorf("subscriber deliver panic: %v", r)
				}
			}()
			deliverErr = item.sub.Deliver(evt)
		}()
		if deliverErr == nil {
			continue
		}

		h.Unsubscribe(item.id)
		if h.metrics != nil {
			h.metrics.deliveryErrors.WithLabelValues(string(evt.Type)).Inc()
		}
		h.logger.Debug("event delivery error", "type", evt.Type, "subscriber", item.id, "error", deliverErr)
		errs = append(errs, &ChannelError{Subscriber: item.id, Type: evt.Type, Err: deliverErr})
	}

	return errors.Join(errs...)
}

// Stop closes every subscriber. The Hub stays usable afterwards.
func (h *Hub) Stop() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[SubscriberID]Subscriber)
	if h.metrics != nil {
		h.metrics.subscribers.Set(0)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
