package controllers

import (
	"time"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"
	"contract-admin/api/models/response"
	"contract-admin/api/validate"
	"contract-admin/log"
	"contract-admin/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserController struct {
	*Panel
}

// Login checks the admin credentials and issues a token kept in the session store.
func (c *UserController) Login(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.Login{}

	errCode := validate.NewUser().Login(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	admin := c.Conf.DefaultAdmin
	if req.Name != admin.Username || !utils.CheckPassword(admin.Password, req.Password) {
		res.Response(ctx, statecode.NameOrPasswordErr, nil)
		return
	}

	expire := c.Conf.Jwt.ExpireTime
	token, err := utils.CreateToken(req.Name, c.Conf.Jwt.SecretKey, time.Duration(expire)*time.Second)
	if err != nil {
		log.Logger.Error("create token", zap.Error(err))
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	if err := c.Sessions.Save(req.Name, token, expire); err != nil {
		log.Logger.Error("save session", zap.Error(err))
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, response.Login{TokenId: token})
}

// Logout drops the session, which revokes the token before it expires.
func (c *UserController) Logout(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	username := ctx.GetString("username")
	if err := c.Sessions.Delete(username); err != nil {
		log.Logger.Error("delete session", zap.Error(err))
	}
	res.Response(ctx, statecode.CommonSuccess, nil)
}
