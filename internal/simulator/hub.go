package simulator

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Messages queued per watcher before it is dropped
	sendBuffer = 16
)

type watcher struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
	closeOnce  sync.Once
}

func (w *watcher) close() {
	w.closeOnce.Do(func() { close(w.send) })
}

// hub fans applied params out to websocket watchers
type hub struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
	wg       sync.WaitGroup
}

func newHub() *hub {
	return &hub{watchers: make(map[*watcher]struct{})}
}

// attach starts the pumps for an upgraded connection. The first message
// is the current state.
func (h *hub) attach(conn *websocket.Conn, remoteAddr string, initial []byte) {
	w := &watcher{
		conn:       conn,
		remoteAddr: remoteAddr,
		send:       make(chan []byte, sendBuffer),
	}
	w.send <- initial

	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()

	logging.LogConnection(remoteAddr, "websocket_upgraded")

	h.wg.Add(2)
	go h.writePump(w)
	go h.readPump(w)
}

func (h *hub) detach(w *watcher) {
	h.mu.Lock()
	_, ok := h.watchers[w]
	delete(h.watchers, w)
	h.mu.Unlock()
	if ok {
		w.close()
	}
}

// broadcast queues msg for every watcher; a watcher whose queue is full
// is disconnected.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	var slow []*watcher
	for w := range h.watchers {
		select {
		case w.send <- msg:
		default:
			slow = append(slow, w)
		}
	}
	h.mu.Unlock()

	for _, w := range slow {
		logging.Warn("Dropping slow watcher", zap.String("remote_addr", w.remoteAddr))
		h.detach(w)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// closeAll disconnects every watcher and waits for the pumps
func (h *hub) closeAll() {
	h.mu.Lock()
	all := make([]*watcher, 0, len(h.watchers))
	for w := range h.watchers {
		all = append(all, w)
	}
	h.mu.Unlock()

	for _, w := range all {
		logging.Info("Closing active connection", zap.String("remote_addr", w.remoteAddr))
		h.detach(w)
	}
	h.wg.Wait()
}

func (h *hub) writePump(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		h.wg.Done()
		ticker.Stop()
		_ = w.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logging.Debug("WebSocket write failed", zap.String("remote_addr", w.remoteAddr), zap.Error(err))
				h.detach(w)
				return
			}
			logging.LogWebSocketMessage(w.remoteAddr, "sent", websocket.TextMessage, msg)

		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.detach(w)
				return
			}
		}
	}
}

// readPump only exists to process control frames and notice the close
func (h *hub) readPump(w *watcher) {
	defer func() {
		h.wg.Done()
		h.detach(w)
		logging.LogConnection(w.remoteAddr, "websocket_closed")
	}()

	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("WebSocket closed unexpectedly", zap.String("remote_addr", w.remoteAddr), zap.Error(err))
			}
			return
		}
	}
}
