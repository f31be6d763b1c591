package response

import (
	"net/http"

	"contract-admin/api/common/statecode"

	"github.com/gin-gonic/gin"
)

type Gin struct {
	Res *gin.Context
}

type Page struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Response writes the {code, msg, data} envelope. The HTTP status is always 200.
func (g *Gin) Response(ctx *gin.Context, code int, data interface{}) {
	ctx.JSON(http.StatusOK, Page{
		Code:    code,
		Message: statecode.GetMsg(code),
		Data:    data,
	})
}

type Login struct {
	TokenId string `json:"token_id"`
}
