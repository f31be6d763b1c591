package controllers

import (
	"net/http"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/response"
	"contract-admin/internal/dispatch"
	"contract-admin/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConnectionController struct {
	*Panel
}

func (c *ConnectionController) State(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	res.Response(ctx, statecode.CommonSuccess, c.Tracker.State())
}

// Connect requests wallet access. Failures land in the connection state.
func (c *ConnectionController) Connect(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if err := c.Tracker.Connect(ctx.Request.Context()); err != nil {
		log.Logger.Warn("connect wallet", zap.Error(err))
	}
	res.Response(ctx, statecode.CommonSuccess, c.Tracker.State())
}

func (c *ConnectionController) Switch(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if err := c.Tracker.SwitchNetwork(ctx.Request.Context()); err != nil {
		log.Logger.Warn("switch network", zap.Error(err))
		res.Response(ctx, codeOf(dispatch.Classify(err)), c.Tracker.State())
		return
	}
	res.Response(ctx, statecode.CommonSuccess, c.Tracker.State())
}

// ConnectForm and SwitchForm back the connection control on the panel page.
func (c *ConnectionController) ConnectForm(ctx *gin.Context) {
	if err := c.Tracker.Connect(ctx.Request.Context()); err != nil {
		log.Logger.Warn("connect wallet", zap.Error(err))
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (c *ConnectionController) SwitchForm(ctx *gin.Context) {
	if err := c.Tracker.SwitchNetwork(ctx.Request.Context()); err != nil {
		log.Logger.Warn("switch network", zap.Error(err))
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}
