package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Client is one connected session. An empty Partner receives every event.
type Client struct {
	ID      string
	Partner string
	Send    chan []byte
}

type outbound struct {
	partner string // "" = everyone
	msg     []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // id -> client
	register chan *Client
	unreg    chan *Client
	out      chan outbound

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		out:      make(chan outbound, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	return fmt.Sprintf("c%d", h.nextID.Add(1))
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "partner", c.Partner, "total", total)

		case c := <-h.unreg:
			if c == nil {
				continue
			}
			h.drop(c.ID)
			h.log.Info("client_unregistered", "id", c.ID, "total", h.Count())

		case o := <-h.out:
			var slow []string
			h.mu.RLock()
			for id, c := range h.clients {
				if o.partner != "" && c.Partner != "" && c.Partner != o.partner {
					continue
				}
				select {
				case c.Send <- o.msg:
				default:
					slow = append(slow, id)
				}
			}
			h.mu.RUnlock()
			// slow clients are dropped so one reader cannot stall the hub
			for _, id := range slow {
				h.drop(id)
				h.log.Warn("client_dropped_slow", "id", id)
			}

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.Send)
	}
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register assigns an ID when c has none and attaches it.
func (h *Hub) Register(c *Client) {
	if c.ID == "" {
		c.ID = h.newID()
	}
	select {
	case h.register <- c:
	case <-h.stopped:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

// Broadcast sends b to every client.
func (h *Hub) Broadcast(b []byte) { h.out <- outbound{msg: b} }

// BroadcastEvent sends a change event to the clients following its partner
// and to the unfiltered ones. Bodies without a partnerName go to everyone.
func (h *Hub) BroadcastEvent(b []byte) {
	var head struct {
		PartnerName string `json:"partnerName"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		h.log.Warn("event_decode_failed", "err", err)
	}
	h.out <- outbound{partner: head.PartnerName, msg: b}
}
