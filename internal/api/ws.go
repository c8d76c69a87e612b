package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexscent/internal/engine"
)

const (
	maxWSConns   = 16
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 15 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// TickFrame is pushed to websocket clients after every tick.
type TickFrame struct {
	Tick   uint64             `json:"tick"`
	Stats  engine.SimStats    `json:"stats"`
	Events []engine.Event     `json:"events,omitempty"`
	Agents []engine.AgentView `json:"agents"`
}

// handleWS upgrades to a websocket and streams one TickFrame per tick until
// the client goes away or falls too far behind.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.wsConns, 1)
	defer atomic.AddInt32(&s.wsConns, -1)
	if current > maxWSConns {
		http.Error(w, "too many websocket connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)
	slog.Info("websocket client connected", "sub_id", subID)

	// Reader goroutine: we ignore client messages but must drain them to
	// notice close frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial state so a client does not wait a full tick for its first frame.
	first := TickFrame{Tick: s.Sim.CurrentTick(), Stats: s.Sim.Snapshot(), Agents: s.Sim.ListAgents()}
	if err := writeFrame(conn, first); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case f, ok := <-ch:
			if !ok {
				return
			}
			frame := TickFrame{Tick: f.Tick, Stats: f.Stats, Events: f.Events, Agents: s.Sim.ListAgents()}
			if err := writeFrame(conn, frame); err != nil {
				slog.Info("websocket client dropped", "sub_id", subID, "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			slog.Info("websocket client disconnected", "sub_id", subID)
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f TickFrame) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f)
}
