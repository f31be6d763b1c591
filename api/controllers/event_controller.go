package controllers

import (
	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"
	"contract-admin/api/models/response"
	"contract-admin/api/validate"
	"contract-admin/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventController struct {
	*Panel
}

// Recent lists the latest contract events, newest first.
func (c *EventController) Recent(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if c.Events == nil {
		res.Response(ctx, statecode.EventsDisabled, nil)
		return
	}
	req := request.Events{}
	errCode := validate.NewEvent(c.Conf.Events.Recent).Recent(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	events, err := c.Events.Recent(ctx.Request.Context(), req.Limit)
	if err != nil {
		log.Logger.Error("recent events", zap.Error(err))
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, events)
}
