package validate

import (
	"errors"
	"io"

	"contract-admin/api/common/statecode"
	"contract-admin/api/models/request"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type User struct{}

func NewUser() *User {
	return &User{}
}

func (v *User) Login(c *gin.Context, req *request.Login) int {
	err := c.ShouldBindJSON(req)
	if err == io.EOF {
		return statecode.ParameterEmptyErr
	} else if err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			for _, e := range errs {
				if e.Tag() == "required" {
					return statecode.ParameterEmptyErr
				}
			}
		}
		return statecode.CommonErrServerErr
	}
	return statecode.CommonSuccess
}
