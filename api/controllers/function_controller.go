package controllers

import (
	"net/http"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"
	"contract-admin/api/models/response"
	"contract-admin/api/validate"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/forms"

	"github.com/gin-gonic/gin"
)

type FunctionController struct {
	*Panel
}

// SubmitForm handles a form post from the panel page and redirects back to
// the function's card.
func (c *FunctionController) SubmitForm(ctx *gin.Context) {
	name := ctx.Param("name")
	fn, ok := c.Interface.Lookup(name)
	if !ok {
		ctx.String(http.StatusNotFound, "unknown function %s", name)
		return
	}
	req := dispatch.Request{
		Function: name,
		Inputs:   inputs(fn, ctx.PostFormArray),
		Value:    ctx.PostForm(forms.ValueField),
	}
	_, _, _ = c.submit(ctx.Request.Context(), req)
	ctx.Redirect(http.StatusSeeOther, "/#fn-"+name)
}

// Invoke is the JSON submission. Reads answer with their result, writes with
// the invocation id once the wallet has the request.
func (c *FunctionController) Invoke(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := request.Invoke{}

	errCode := validate.NewFunction().Invoke(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	name := ctx.Param("name")
	inv, result, err := c.submit(ctx.Request.Context(), dispatch.Request{Function: name, Inputs: req.Args, Value: req.Value})
	if err != nil {
		data := response.Invocation{Function: name, Result: result, Panel: result.Panel()}
		res.Response(ctx, codeOf(err), data)
		return
	}

	data := response.Invocation{Id: inv.ID, Function: name, Result: result}
	if result != nil {
		data.Panel = result.Panel()
		if result.Outcome == dispatch.OutcomeFailure {
			res.Response(ctx, categoryCode(result.Category), data)
			return
		}
	} else {
		data.Panel = dispatch.ProcessingPanel(name)
	}
	res.Response(ctx, statecode.CommonSuccess, data)
}

// Result returns the stored panel of a function.
func (c *FunctionController) Result(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	name := ctx.Param("name")
	form, ok := c.Model.Form(name)
	if !ok {
		res.Response(ctx, statecode.FunctionUnknown, nil)
		return
	}
	panels, err := c.Dispatcher.Panels(ctx.Request.Context())
	if err != nil {
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	panel := form.Panel
	if p, ok := panels[name]; ok {
		panel = p
	}
	res.Response(ctx, statecode.CommonSuccess, response.FunctionResult{
		Function: name,
		Busy:     c.Dispatcher.Busy(name),
		Panel:    panel,
	})
}

// Forms returns the render model with the current panels.
func (c *FunctionController) Forms(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	panels, err := c.Dispatcher.Panels(ctx.Request.Context())
	if err != nil {
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, c.Model.WithPanels(panels))
}

// Records lists the latest audited invocations.
func (c *FunctionController) Records(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if c.Panel.Records == nil {
		res.Response(ctx, statecode.RecordsDisabled, nil)
		return
	}
	req := request.Records{}
	errCode := validate.NewFunction().Records(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}
	records, err := c.Panel.Records.Recent(ctx.Request.Context(), req.Function, req.Limit)
	if err != nil {
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, records)
}
