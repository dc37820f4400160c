// Package realtime fans out table change events to WebSocket clients.
package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	Insert = "INSERT"
	Update = "UPDATE"
	Delete = "DELETE"
)

const (
	TableOrders     = "orders"
	TableShifts     = "shifts"
	TableStockItems = "stock_items"
	TablePrintJobs  = "print_jobs"
)

var Tables = []string{TableOrders, TableShifts, TableStockItems, TablePrintJobs}

// Event describes one row change.
type Event struct {
	Table  string    `json:"table"`
	Type   string    `json:"type"`
	Record any       `json:"record"`
	At     time.Time `json:"at"`
}

// Publisher is implemented by Hub and RedisBroker.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	bufferSize = 64
)

type subscriber struct {
	tables map[string]bool
	events chan Event
}

func (s *subscriber) wants(table string) bool {
	return len(s.tables) == 0 || s.tables[table]
}

type Hub struct {
	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		log:  log.Named("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish delivers ev to every local subscriber of its table. Slow
// subscribers lose the event instead of blocking the publisher.
func (h *Hub) Publish(_ context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(ev.Table) {
			continue
		}
		select {
		case s.events <- ev:
		default:
			h.log.Warn("dropping event for slow subscriber", zap.String("table", ev.Table))
		}
	}
}

// Subscribe registers an in-process listener. An empty table list receives everything.
func (h *Hub) Subscribe(tables []string) (<-chan Event, func()) {
	s := &subscriber{tables: make(map[string]bool), events: make(chan Event, bufferSize)}
	for _, t := range tables {
		if t = strings.TrimSpace(t); t != "" {
			s.tables[t] = true
		}
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.events, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
		})
	}
}

// Clients returns the number of active subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ParseTables splits a comma separated table list, keeping only known tables.
func ParseTables(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		for _, known := range Tables {
			if t == known {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// ServeWS upgrades the request and streams events for tables until the
// client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tables []string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	events, unsubscribe := h.Subscribe(tables)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	h.log.Debug("client connected", zap.Strings("tables", tables))
	for {
		select {
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case <-r.Context().Done():
			return
		}
	}
}
