package validate

import (
	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"

	"github.com/gin-gonic/gin"
)

type Event struct {
	defaultLimit int
}

func NewEvent(defaultLimit int) *Event {
	return &Event{defaultLimit: defaultLimit}
}

func (v *Event) Recent(c *gin.Context, req *request.Events) int {
	if err := c.ShouldBindQuery(req); err != nil {
		return statecode.InvalidArgument
	}
	if req.Limit == 0 {
		req.Limit = v.defaultLimit
	}
	return statecode.CommonSuccess
}
