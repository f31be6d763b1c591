package controllers

import (
	"contract-admin/api/common/statecode"
	"contract-admin/api/models/response"
	"contract-admin/internal/dispatch"
	"contract-admin/log"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContractController struct {
	*Panel
}

// Balance reports the native balance held by the contract.
func (c *ContractController) Balance(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	if c.Monitor == nil {
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	wei, low, err := c.Monitor.Check(ctx.Request.Context())
	if err != nil {
		log.Logger.Error("contract balance", zap.Error(err))
		res.Response(ctx, statecode.TransportErr, nil)
		return
	}
	contract := c.Conf.Contract
	res.Response(ctx, statecode.CommonSuccess, response.Balance{
		Address:        common.HexToAddress(contract.Address).Hex(),
		Wei:            wei.String(),
		Balance:        dispatch.FormatValue(wei, contract.CurrencyDecimal, 4),
		Symbol:         contract.CurrencySymbol,
		BelowThreshold: low,
	})
}
