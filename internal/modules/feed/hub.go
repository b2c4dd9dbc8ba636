package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rentalhub/internal/modules/booking"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // configure in prod
}

// Event is a real-time availability update pushed to calendar subscribers.
// The payload is the sanitized public projection only.
type Event struct {
	Type      string                    `json:"type"`
	ProductID int64                     `json:"productId"`
	Booking   booking.PublicBookingView `json:"booking"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans booking events out to clients watching a product's calendar.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[*subscriber]bool)}
}

// PublishBookingEvent implements booking.EventPublisher.
func (h *Hub) PublishBookingEvent(productID int64, event string, view booking.PublicBookingView) {
	data, err := json.Marshal(Event{Type: event, ProductID: productID, Booking: view})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[productID] {
		select {
		case sub.send <- data:
		default:
			// client too slow, skip
		}
	}
}

func (h *Hub) subscribe(productID int64, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[productID] == nil {
		h.subs[productID] = make(map[*subscriber]bool)
	}
	h.subs[productID][sub] = true
}

func (h *Hub) unsubscribe(productID int64, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[productID]; ok && set[sub] {
		delete(set, sub)
		close(sub.send)
		if len(set) == 0 {
			delete(h.subs, productID)
		}
	}
}

// ServeWS upgrades the connection and streams events for one product until
// the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, productID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, 64)}
	h.subscribe(productID, sub)

	go h.writePump(sub)
	go h.readPump(productID, sub)
	return nil
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; the feed is one-way. It exists to run
// the close/pong handlers.
func (h *Hub) readPump(productID int64, sub *subscriber) {
	defer func() {
		h.unsubscribe(productID, sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).Debug("feed connection closed")
			}
			return
		}
	}
}
