package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coral-mesh/qrscan/internal/scan"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxCommandSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Command is sent by websocket clients.
type Command struct {
	Command string `json:"command"`
}

// Reply answers a Command.
type Reply struct {
	Event   string `json:"event"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := s.hub.register()

	// The first message is the current state so clients need not poll.
	snapshot, _ := json.Marshal(scan.NewMessage(scan.EventStateChanged{State: s.cfg.Controller.State()}, time.Now()))
	s.hub.trySend(c, snapshot)

	go s.writePump(conn, c)
	s.readPump(conn, c)
}

// readPump handles commands until the connection fails.
func (s *Server) readPump(conn *websocket.Conn, c *client) {
	defer s.hub.unregister(c)

	conn.SetReadLimit(maxCommandSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Str("client_id", c.id).Msg("Websocket read failed")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reply(c, Reply{State: s.cfg.Controller.State().String(), Error: "invalid command"})
			continue
		}
		s.handleCommand(c, cmd)
	}
}

func (s *Server) handleCommand(c *client, cmd Command) {
	ctrl := s.cfg.Controller

	switch cmd.Command {
	case "start":
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StartTimeout)
			defer cancel()

			reply := Reply{Command: cmd.Command}
			err, ok := <-ctrl.Start(ctx)
			switch {
			case !ok:
				reply.Error = "scanner is not idle"
			case err != nil:
				reply.Error = err.Error()
			default:
				reply.OK = true
			}
			reply.State = ctrl.State().String()
			s.reply(c, reply)
		}()
	case "stop":
		go func() {
			ctrl.Stop()
			s.reply(c, Reply{Command: cmd.Command, OK: true, State: ctrl.State().String()})
		}()
	default:
		s.reply(c, Reply{Command: cmd.Command, State: ctrl.State().String(), Error: "unknown command"})
	}
}

func (s *Server) reply(c *client, r Reply) {
	r.Event = "reply"
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	s.hub.trySend(c, data)
}

// writePump forwards queued messages and keeps the connection alive. It
// closes the connection when the client is unregistered.
func (s *Server) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
