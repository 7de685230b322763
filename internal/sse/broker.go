// Package sse implements a Server-Sent Events broker for dashboard updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	EventDashboardUpdated   = "dashboard.updated"
	EventDashboardFailed    = "dashboard.failed"
	EventCredentialsUpdated = "credentials.updated"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// DashboardUpdate is the payload of dashboard.updated.
type DashboardUpdate struct {
	Checksum  string    `json:"checksum"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the throttle state.
// Public methods talk to the loop through channels.
type Broker struct {
	updateMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	updateCh      chan DashboardUpdate
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that sends at most one dashboard.updated event
// per throttle interval. Updates arriving inside the window are coalesced and
// the latest one is delivered when the window ends.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		updateMin:     throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		updateCh:      make(chan DashboardUpdate, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastUpdate time.Time
		pending    *DashboardUpdate
		timer      *time.Timer
		timerC     <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	sendUpdate := func(u DashboardUpdate) {
		lastUpdate = time.Now()
		broadcast(Event{Type: EventDashboardUpdated, Data: u})
	}

	for {
		select {
		case <-b.stopCh:
			if timer != nil {
				timer.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case u := <-b.updateCh:
			wait := b.updateMin - time.Since(lastUpdate)
			if wait <= 0 && pending == nil {
				sendUpdate(u)
				continue
			}
			pending = &u
			if timerC == nil {
				timer = time.NewTimer(wait)
				timerC = timer.C
			}

		case <-timerC:
			timer, timerC = nil, nil
			if pending != nil {
				sendUpdate(*pending)
				pending = nil
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishDashboardUpdated announces a new snapshot, subject to throttling.
func (b *Broker) PublishDashboardUpdated(checksum string, fetchedAt time.Time) {
	if b.closed.Load() {
		return
	}
	select {
	case b.updateCh <- DashboardUpdate{Checksum: checksum, FetchedAt: fetchedAt}:
	case <-b.stopped:
	}
}

// PublishDashboardFailed announces a failed refresh.
func (b *Broker) PublishDashboardFailed(err error) {
	b.Publish(Event{Type: EventDashboardFailed, Data: map[string]string{"error": err.Error()}})
}

// PublishCredentialsUpdated announces that the stored credentials changed.
func (b *Broker) PublishCredentialsUpdated() {
	b.Publish(Event{Type: EventCredentialsUpdated, Data: map[string]string{}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
