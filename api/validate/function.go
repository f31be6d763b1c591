package validate

import (
	"errors"
	"io"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Function struct{}

func NewFunction() *Function {
	return &Function{}
}

// Invoke binds the JSON body. An empty body is a call without arguments.
func (v *Function) Invoke(c *gin.Context, req *request.Invoke) int {
	err := c.ShouldBindJSON(req)
	if err == io.EOF {
		return statecode.CommonSuccess
	} else if err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			return statecode.InvalidArgument
		}
		return statecode.CommonErrServerErr
	}
	return statecode.CommonSuccess
}

func (v *Function) Records(c *gin.Context, req *request.Records) int {
	if err := c.ShouldBindQuery(req); err != nil {
		return statecode.InvalidArgument
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	return statecode.CommonSuccess
}
