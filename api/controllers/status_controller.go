package controllers

import (
	"net/http"
	"strings"
	"time"

	"contract-admin/api/models/ws"
	"contract-admin/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type StatusController struct {
	*Panel
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 5 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Status upgrades to a websocket that receives the connection state and
// every panel update.
func (c *StatusController) Status(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Logger.Error("websocket upgrade", zap.Error(err))
		return
	}

	id := uuid.NewString()
	if ip := ctx.RemoteIP(); ip != "" {
		id = strings.ReplaceAll(ip, ".", "_") + "_" + id
	}
	server := &ws.Server{
		Id:       id,
		Socket:   conn,
		Send:     make(chan []byte, ws.SendBuffer),
		LastTime: time.Now().Unix(),
	}
	c.Hub.Register(server)
	c.Hub.Broadcast(ws.Message{Type: "connection", Data: c.Tracker.State()})
}
