package device

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
)

const (
	// watchSuffix is appended to the params path to reach the push socket
	watchSuffix = "/ws"

	// watchPongWait is how long the socket may stay silent before it is
	// considered dead
	watchPongWait = 60 * time.Second
)

// WatchURL returns the websocket URL that pushes applied params.
func (c *Client) WatchURL() (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + watchSuffix
	return u.String(), nil
}

// Watch streams every params object the device applies until ctx is done
// or the connection drops. Messages that do not decode are logged and
// skipped. Watch returns nil when ctx is canceled.
func (c *Client) Watch(ctx context.Context, fn func(painter.Params)) error {
	wsURL, err := c.WatchURL()
	if err != nil {
		return NewNetworkError("invalid watch URL", c.Endpoint, err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.HTTPClient.Timeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return NewHTTPError(resp.StatusCode, "websocket upgrade refused")
		}
		return NewNetworkError("websocket dial failed", wsURL, err)
	}
	logging.LogConnection(wsURL, "watch_connected")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
			_ = conn.Close()
		}
	}()

	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.LogConnection(wsURL, "watch_closed")
				return nil
			}
			return NewNetworkError("websocket read failed", wsURL, err)
		}
		logging.LogWebSocketMessage(wsURL, "received", msgType, data)

		if msgType != websocket.TextMessage {
			continue
		}
		params, err := painter.Decode(data)
		if err != nil {
			logging.Warn("Ignoring malformed pushed params",
				zap.String("url", wsURL),
				zap.Error(err),
			)
			continue
		}
		fn(params)
	}
}
