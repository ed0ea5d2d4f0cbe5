// Package preview streams compiled draw commands over a websocket. A
// client sends scene snapshots and receives the command list to paint,
// so thin frontends can stay free of scene-graph logic.
package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/racan/racan/backend-go/internal/editor"
	"github.com/racan/racan/backend-go/internal/scene"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4 << 20
)

// Message is the wire envelope in both directions.
type Message struct {
	Type     string               `json:"type"`
	Scene    json.RawMessage      `json:"scene,omitempty"`
	Commands []editor.DrawCommand `json:"commands,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type sceneEnvelope struct {
	Elements      []scene.Element  `json:"elements"`
	CanvasSize    scene.CanvasSize `json:"canvasSize"`
	CanvasBg      string           `json:"canvasBg"`
	CanvasBgImage string           `json:"canvasBgImage"`
}

// Handler upgrades preview websocket connections.
type Handler struct {
	originPatterns []string
}

func NewHandler(originPatterns []string) *Handler {
	return &Handler{originPatterns: originPatterns}
}

// Serve handles GET /ws/preview.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	ch := newChannel(conn)
	ctx := r.Context()
	go ch.writePump(ctx)
	ch.readPump(ctx)
}

type channel struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

func newChannel(conn *websocket.Conn) *channel {
	return &channel{
		conn: conn,
		send: make(chan []byte, 16),
		id:   uuid.New().String(),
	}
}

func (c *channel) readPump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("preview read error", "error", err, "channel", c.id)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Message{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "scene":
			c.reply(compile(msg.Scene))
		case "ping":
			c.reply(Message{Type: "pong"})
		default:
			c.reply(Message{Type: "error", Error: "unknown message type"})
		}
	}
}

func (c *channel) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("preview write error", "error", err, "channel", c.id)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *channel) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal preview message", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("preview send buffer full, dropping message", "channel", c.id)
	}
}

// compile turns a scene envelope into its draw command list.
func compile(raw json.RawMessage) Message {
	var env sceneEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Message{Type: "error", Error: "invalid scene: " + err.Error()}
	}
	if env.CanvasSize.Width <= 0 || env.CanvasSize.Height <= 0 {
		return Message{Type: "error", Error: "canvasSize must be positive"}
	}

	s := scene.New(env.CanvasSize.Width, env.CanvasSize.Height)
	if env.CanvasBg != "" {
		s.Frame.Background = env.CanvasBg
	}
	s.Frame.BackgroundImage = env.CanvasBgImage
	s.Elements = env.Elements

	cmds := editor.CompileDrawCommands(s)
	if cmds == nil {
		cmds = []editor.DrawCommand{}
	}
	return Message{Type: "commands", Commands: cmds}
}
