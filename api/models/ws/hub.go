package ws

import (
	"encoding/json"
	"sync"
	"time"

	"contract-admin/log"
	"contract-admin/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	SendBuffer     = 64
	HeartbeatTime  = 30 * time.Second
	ServerTimeout  = 90 * time.Second
	WriteWait      = 10 * time.Second
	PingText       = "ping"
)

// Message is one push to the status page.
type Message struct {
	Type     string      `json:"type"` // "connection" or "panel"
	Function string      `json:"function,omitempty"`
	Data     interface{} `json:"data"`
}

// Server is one websocket client.
type Server struct {
	Id       string
	Socket   *websocket.Conn
	Send     chan []byte
	LastTime int64

	hub  *Hub
	once sync.Once
}

// Hub fans messages out to every connected client.
type Hub struct {
	servers utils.Map[string, *Server]
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Len() int {
	return h.servers.Len()
}

// Register adds s and starts its reader and writer.
func (h *Hub) Register(s *Server) {
	s.hub = h
	h.servers.Set(s.Id, s)
	go s.write()
	go s.read()
}

// Broadcast queues msg for every client. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Logger.Error("ws marshal", zap.Error(err))
		return
	}
	var slow []*Server
	h.servers.RLockRange(func(_ string, s *Server) {
		select {
		case s.Send <- data:
		default:
			slow = append(slow, s)
		}
	})
	for _, s := range slow {
		s.Close()
	}
}

// Close unregisters the client and closes its socket.
func (s *Server) Close() {
	s.once.Do(func() {
		if s.hub != nil {
			utils.DelIf(&s.hub.servers, s.Id, s)
		}
		close(s.Send)
		_ = s.Socket.Close()
	})
}

func (s *Server) read() {
	defer s.Close()
	_ = s.Socket.SetReadDeadline(time.Now().Add(ServerTimeout))
	s.Socket.SetPongHandler(func(string) error {
		s.LastTime = time.Now().Unix()
		return s.Socket.SetReadDeadline(time.Now().Add(ServerTimeout))
	})
	for {
		_, message, err := s.Socket.ReadMessage()
		if err != nil {
			return
		}
		if string(message) == PingText {
			s.LastTime = time.Now().Unix()
			_ = s.Socket.SetReadDeadline(time.Now().Add(ServerTimeout))
		}
	}
}

func (s *Server) write() {
	ticker := time.NewTicker(HeartbeatTime)
	defer func() {
		ticker.Stop()
		s.Close()
	}()
	for {
		select {
		case data, ok := <-s.Send:
			_ = s.Socket.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = s.Socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.Socket.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := s.Socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
