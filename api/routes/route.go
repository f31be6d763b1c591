package routes

import (
	"contract-admin/api/controllers"
	"contract-admin/api/middlewares"
	"contract-admin/api/static"
	"contract-admin/internal/metrics"

	"github.com/gin-gonic/gin"
)

// InitRoute mounts the panel page, the JSON API, the status websocket and
// the metrics endpoint.
func InitRoute(e *gin.Engine, p *controllers.Panel, m *metrics.Metrics) *gin.Engine {
	e.SetHTMLTemplate(static.Templates())

	page := controllers.PageController{Panel: p}
	function := controllers.FunctionController{Panel: p}
	conn := controllers.ConnectionController{Panel: p}
	user := controllers.UserController{Panel: p}
	status := controllers.StatusController{Panel: p}
	contract := controllers.ContractController{Panel: p}
	event := controllers.EventController{Panel: p}

	e.GET("/", page.Index)
	e.POST("/functions/:name", function.SubmitForm)
	e.POST("/connect", conn.ConnectForm)
	e.POST("/switch-network", conn.SwitchForm)
	e.GET("/ws/status", status.Status)
	if m != nil {
		e.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := e.Group("/api/" + p.Conf.Env.Version)
	{
		v1.POST("/user/login", user.Login)
		v1.GET("/forms", function.Forms)
		v1.GET("/functions/:name/result", function.Result)
		v1.GET("/connection", conn.State)
		v1.GET("/contract/balance", contract.Balance)
		v1.GET("/events", event.Recent)

		auth := v1.Group("", middlewares.CheckToken(p.Conf.Jwt.SecretKey, p.Sessions))
		auth.POST("/user/logout", user.Logout)
		auth.POST("/functions/:name", function.Invoke)
		auth.POST("/connection/connect", conn.Connect)
		auth.POST("/connection/switch", conn.Switch)
		auth.GET("/invocations", function.Records)
	}
	return e
}
