package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ericogr/cardduel/internal/constants"
	"github.com/ericogr/cardduel/internal/logging"
	"github.com/ericogr/cardduel/internal/phase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 64
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub fans duel events out to websocket subscribers. Broadcast runs under the
// duel's machine lock, so events are encoded there and never block: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) Broadcast(ev phase.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.subs[ev.Duel]
	if len(subs) == 0 {
		return
	}
	msg, err := json.Marshal(wsMessage{Type: "event", Event: &ev, State: ev.Snapshot})
	if err != nil {
		logging.Error("encode event failed", err, logging.Fields{constants.LogFieldDuel: ev.Duel})
		return
	}
	for s := range subs {
		select {
		case s.send <- msg:
		default:
			logging.Warn("event subscriber too slow; dropping event", logging.Fields{
				constants.LogFieldDuel: ev.Duel,
				"kind":                 string(ev.Kind),
			})
		}
	}
}

func (h *Hub) subscribe(code string) *subscriber {
	s := &subscriber{send: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[code] == nil {
		h.subs[code] = make(map[*subscriber]struct{})
	}
	h.subs[code][s] = struct{}{}
	return s
}

func (h *Hub) unsubscribe(code string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[code][s]; !ok {
		return
	}
	delete(h.subs[code], s)
	if len(h.subs[code]) == 0 {
		delete(h.subs, code)
	}
	close(s.send)
}

// Subscribers reports how many streams follow code.
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[code])
}

// wsMessage is what a stream client receives: engine events, plus one
// snapshot message when the stream opens.
type wsMessage struct {
	Type  string          `json:"type"`
	Event *phase.Event    `json:"event,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

// Events upgrades to a websocket that streams the duel's engine events.
func (h *DuelHandler) Events(c *gin.Context) {
	code, ok := duelCode(c)
	if !ok {
		return
	}
	state, err := h.svc.Snapshot(code)
	if err != nil {
		abortWithError(c, err, constants.ErrFailedEncodeDuel)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(constants.ErrWebsocketUpgrade, err, logging.Fields{constants.LogFieldDuel: code})
		return
	}
	sub := h.hub.subscribe(code)
	// re-read after subscribing so no event falls between state and stream
	if fresh, err := h.svc.Snapshot(code); err == nil {
		state = fresh
	}
	logging.Debug("event stream opened", logging.Fields{constants.LogFieldDuel: code, constants.LogFieldAddr: c.ClientIP()})

	go readPump(conn, func() { h.hub.unsubscribe(code, sub) })
	writePump(conn, sub, state)
}

// readPump discards client frames and unsubscribes once the peer goes away.
func readPump(conn *websocket.Conn, done func()) {
	defer done()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *subscriber, state json.RawMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(wsMessage{Type: "snapshot", State: state}); err != nil {
		return
	}
	for {
		select {
		case msg, ok := <-sub.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
