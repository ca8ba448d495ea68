package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Типы сообщений, которые получает клиент.
const (
	MessageNotification = "NOTIFICATION"
	MessageMatchUpdated = "MATCH_UPDATED"
	MessageMatchCreated = "MATCH_CREATED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// UserRoom - комната с подключениями одного пользователя.
func UserRoom(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}

type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub раздает сообщения клиентам по комнатам. Канал send клиента закрывает
// только Run, под h.mu, поэтому BroadcastToRoom никогда не пишет в закрытый канал.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	done       chan struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			size := len(h.rooms[client.room])
			h.mu.Unlock()
			h.logger.Debug("client registered",
				slog.String("client_id", client.ID), slog.String("room", client.room), slog.Int("room_size", size))

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok && clients[client] {
				delete(clients, client)
				close(client.send)
				if len(clients) == 0 {
					delete(h.rooms, client.room)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", slog.String("client_id", client.ID), slog.String("room", client.room))

		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			close(h.done)
			return
		}
	}
}

// RoomSize возвращает число подключенных клиентов в комнате.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
// Клиенты с переполненным буфером сообщение пропускают.
func (h *Hub) BroadcastToRoom(room string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", slog.String("room", room), slog.Any("error", err))
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full, message dropped",
				slog.String("client_id", client.ID), slog.String("room", room))
		}
	}
}

// Subscribe пробрасывает события шины в комнаты пользователей.
func (h *Hub) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.NotificationCreated, func(_ context.Context, e events.Event) error {
		n, ok := e.Payload.(*models.Notification)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", e.Name, e.Payload)
		}
		room := UserRoom(n.UserID)
		h.BroadcastToRoom(room, Message{Type: MessageNotification, Payload: n, RoomID: room})
		return nil
	})

	matchHandler := func(msgType string) events.Handler {
		return func(_ context.Context, e events.Event) error {
			m, ok := e.Payload.(*models.Match)
			if !ok {
				return fmt.Errorf("unexpected %s payload %T", e.Name, e.Payload)
			}
			for _, playerID := range []int{m.Player1ID, m.Player2ID} {
				room := UserRoom(playerID)
				h.BroadcastToRoom(room, Message{Type: msgType, Payload: m, RoomID: room})
			}
			return nil
		}
	}
	bus.Subscribe(events.MatchUpdated, matchHandler(MessageMatchUpdated))
	bus.Subscribe(events.MatchCreated, matchHandler(MessageMatchCreated))
}

// Attach регистрирует соединение пользователя и запускает его read/write циклы.
// После остановки хаба соединение закрывается и возвращается nil.
func (h *Hub) Attach(conn *websocket.Conn, userID int) *Client {
	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		room: UserRoom(userID),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return client
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		// входящие сообщения клиента не используются
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", slog.String("client_id", c.ID), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed", slog.String("client_id", c.ID), slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
