package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatforge/chatforge/internal/events"
	"github.com/chatforge/chatforge/internal/session"
)

const (
	relayReadTimeout  = 60 * time.Second
	relayWriteTimeout = 10 * time.Second
	relayPingInterval = 54 * time.Second
)

// RelayInbound is one message from the companion channel.
type RelayInbound struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// RelayOutbound carries the synthesized reply back over the channel.
type RelayOutbound struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// relayClient is one websocket connection to the relay. Each client tracks
// the handles it submitted so it only receives replies to its own messages.
// Submissions and event consumption run on the same goroutine, so a handle
// is always registered before its completion event can be observed; pending
// needs no lock.
type relayClient struct {
	conn    *websocket.Conn
	server  *Server
	inbound chan RelayInbound
	done    chan struct{}
	pending map[string]struct{}
}

// handleRelay upgrades the connection and runs the duplex relay: inbound
// `{message, user_id, session_id}`, outbound `{response}`.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("relay upgrade failed", "err", err)
		return
	}

	client := &relayClient{
		conn:    conn,
		server:  s,
		inbound: make(chan RelayInbound),
		done:    make(chan struct{}),
		pending: make(map[string]struct{}),
	}

	ctx, cancel := context.WithCancel(r.Context())
	sub := s.app.Broker.Subscribe(ctx)

	s.logger.Debug("relay client connected", "remote", conn.RemoteAddr())

	go client.writePump(sub)
	client.readPump(cancel)
}

// readPump consumes inbound frames and hands them to the write pump until
// the connection drops.
func (c *relayClient) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.conn.Close()
		c.server.logger.Debug("relay client disconnected", "remote", c.conn.RemoteAddr())
	}()

	c.conn.SetReadDeadline(time.Now().Add(relayReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(relayReadTimeout))
		return nil
	})

	for {
		var in RelayInbound
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("relay read error", "err", err)
			}
			return
		}
		select {
		case c.inbound <- in:
		case <-c.done:
			return
		}
	}
}

// writePump is the single writer and the single consumer of both inbound
// frames and broker events. Handling a submission here registers its handle
// before the next event is taken off the subscription, so the completion can
// never slip past unmatched.
func (c *relayClient) writePump(sub <-chan events.Event) {
	ticker := time.NewTicker(relayPingInterval)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case in := <-c.inbound:
			if err := c.handleInbound(in); err != nil {
				c.server.logger.Warn("relay write error", "err", err)
				return
			}

		case e, ok := <-sub:
			if !ok {
				return
			}
			if out, match := c.replyFor(e); match {
				if err := c.writeFrame(out); err != nil {
					c.server.logger.Warn("relay write error", "err", err)
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleInbound routes one inbound message into the session core. Failures
// are reported on the channel, not fatal to it.
func (c *relayClient) handleInbound(in RelayInbound) error {
	if in.SessionID != "" {
		if err := c.server.app.Store.SwitchActive(in.SessionID); err != nil {
			return c.writeFrame(RelayOutbound{Error: err.Error()})
		}
	}

	handle, err := c.server.app.Submit(in.Message)
	if err != nil {
		return c.writeFrame(RelayOutbound{Error: err.Error()})
	}

	c.pending[handle.ID] = struct{}{}
	return nil
}

// replyFor matches a broker event against this client's pending handles.
func (c *relayClient) replyFor(e events.Event) (RelayOutbound, bool) {
	if e.Type != events.MessageAppended {
		return RelayOutbound{}, false
	}
	payload, ok := e.Payload.(session.MessageEvent)
	if !ok || payload.Message.Sender != session.SenderBot {
		return RelayOutbound{}, false
	}
	if _, mine := c.pending[payload.HandleID]; !mine {
		return RelayOutbound{}, false
	}
	delete(c.pending, payload.HandleID)
	return RelayOutbound{Response: payload.Message.Content}, true
}

func (c *relayClient) writeFrame(out RelayOutbound) error {
	c.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
	return c.conn.WriteJSON(out)
}
