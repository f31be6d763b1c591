package controllers

import (
	"net/http"

	"contract-admin/internal/chain"
	"contract-admin/internal/connection"
	"contract-admin/internal/forms"
	"contract-admin/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PageController struct {
	*Panel
}

// PageData feeds the "page" template.
type PageData struct {
	Title       string
	Contract    string
	Network     string
	ChainId     uint64
	State       connection.State
	ActionPath  string
	Model       forms.Model
	Events      []chain.Event
	EventLog    bool
	RecentLimit int
}

// Index renders the panel: status region, connection control, forms and the
// latest contract events.
func (c *PageController) Index(ctx *gin.Context) {
	panels, err := c.Dispatcher.Panels(ctx.Request.Context())
	if err != nil {
		log.Logger.Error("load panels", zap.Error(err))
		panels = nil
	}
	var recent []chain.Event
	if c.Events != nil {
		recent, err = c.Events.Recent(ctx.Request.Context(), c.Conf.Events.Recent)
		if err != nil {
			log.Logger.Error("load events", zap.Error(err))
		}
	}
	state := c.Tracker.State()
	required := c.Tracker.Required()
	ctx.HTML(http.StatusOK, "page", PageData{
		Title:       "Contract Admin Panel",
		Contract:    c.Conf.Contract.Address,
		Network:     required.Name,
		ChainId:     required.ChainID,
		State:       state,
		ActionPath:  actionPath(state.Action),
		Model:       c.Model.WithPanels(panels),
		Events:      recent,
		EventLog:    c.Events != nil,
		RecentLimit: c.Conf.Events.Recent,
	})
}

func actionPath(action string) string {
	if action == connection.ActionSwitch {
		return "/switch-network"
	}
	return "/connect"
}
