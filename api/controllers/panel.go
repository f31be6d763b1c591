package controllers

import (
	"context"
	"errors"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/ws"
	"contract-admin/config"
	"contract-admin/db"
	"contract-admin/internal/chain"
	"contract-admin/internal/connection"
	"contract-admin/internal/contract"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/events"
	"contract-admin/internal/forms"
	"contract-admin/internal/repo"
	"contract-admin/internal/worker"
	"contract-admin/log"
	"contract-admin/schedule/services"

	"go.uber.org/zap"
)

// Panel is what the controllers share. Records, Events and Monitor may be nil.
type Panel struct {
	Conf       *config.Conf
	Interface  *contract.Interface
	Model      forms.Model
	Dispatcher *dispatch.Dispatcher
	Tracker    *connection.Tracker
	Pool       *worker.Pool
	Sessions   db.Sessions
	Monitor    *services.BalanceMonitor
	Records    *repo.InvocationRepo
	Events     *events.Recorder
	Hub        *ws.Hub
}

// Forward pushes tracker and dispatcher updates to the websocket clients.
func (p *Panel) Forward() {
	p.Tracker.OnChange(func(s connection.State) {
		p.Hub.Broadcast(ws.Message{Type: "connection", Data: s})
	})
	p.Dispatcher.OnPanel(func(function string, panel forms.Panel) {
		p.Hub.Broadcast(ws.Message{Type: "panel", Function: function, Data: panel})
	})
	if p.Events != nil {
		p.Events.OnEvent(func(ev chain.Event) {
			p.Hub.Broadcast(ws.Message{Type: "event", Data: ev})
		})
	}
}

// submit runs req. Reads and refusals finish here and return their result;
// writes hold the submit lock and wait for confirmation on the worker pool.
func (p *Panel) submit(ctx context.Context, req dispatch.Request) (*dispatch.Invocation, *dispatch.Result, error) {
	inv, err := p.Dispatcher.Begin(ctx, req)
	if err != nil {
		res := dispatch.ResultOf(err)
		return nil, &res, err
	}
	if inv.Function.IsRead() {
		res := p.Dispatcher.Run(ctx, inv)
		return inv, &res, nil
	}

	job := func(ctx context.Context) { p.Dispatcher.Run(ctx, inv) }
	if err := p.Pool.Submit(job); err != nil {
		log.Logger.Warn("worker pool unavailable, waiting inline", zap.String("function", inv.Function.Name), zap.Error(err))
		go job(context.WithoutCancel(ctx))
	}
	return inv, nil, nil
}

// inputs collects the submitted field values of fn through get.
func inputs(fn contract.FunctionDescriptor, get func(name string) []string) map[string]string {
	out := make(map[string]string, len(fn.Inputs))
	for _, in := range fn.Inputs {
		if values := get(in.Name); len(values) > 0 {
			out[in.Name] = values[0]
		}
	}
	return out
}

// codeOf maps a dispatch refusal or failure to a state code.
func codeOf(err error) int {
	var e *dispatch.Error
	if !errors.As(err, &e) {
		return statecode.CommonErrServerErr
	}
	return categoryCode(e.Category)
}

func categoryCode(c dispatch.Category) int {
	switch c {
	case dispatch.CategoryInvalidInput:
		return statecode.InvalidArgument
	case dispatch.CategoryBusy:
		return statecode.FunctionBusy
	case dispatch.CategoryConnectionMissing:
		return statecode.ConnectionMissing
	case dispatch.CategoryWrongNetwork:
		return statecode.WrongNetwork
	case dispatch.CategoryChainUnknown:
		return statecode.ChainUnknown
	case dispatch.CategoryUserRejected:
		return statecode.UserRejected
	case dispatch.CategoryContractReverted:
		return statecode.ContractReverted
	}
	return statecode.TransportErr
}
