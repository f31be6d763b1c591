package middlewares

import (
	"contract-admin/api/common/statecode"
	"contract-admin/api/models/response"
	"contract-admin/db"
	"contract-admin/utils"

	"github.com/gin-gonic/gin"
)

// CheckToken admits requests whose authorization header holds a live admin
// token and stores the username under "username".
func CheckToken(secret string, sessions db.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := response.Gin{Res: c}
		token := c.Request.Header.Get("authorization")
		username, err := utils.ParseToken(token, secret)
		if err != nil {
			res.Response(c, statecode.TokenErr, nil)
			c.Abort()
			return
		}
		ok, err := sessions.Valid(username, token)
		if err != nil || !ok {
			res.Response(c, statecode.TokenErr, nil)
			c.Abort()
			return
		}
		c.Set("username", username)
		c.Next()
	}
}
