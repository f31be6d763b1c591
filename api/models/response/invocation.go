package response

import (
	"contract-admin/internal/dispatch"
	"contract-admin/internal/forms"
)

// Invocation answers a JSON submission. Writes return before confirmation with
// the processing panel; the final result is read from the result endpoint.
type Invocation struct {
	Id       string           `json:"id,omitempty"`
	Function string           `json:"function"`
	Result   *dispatch.Result `json:"result,omitempty"`
	Panel    forms.Panel      `json:"panel"`
}

type FunctionResult struct {
	Function string      `json:"function"`
	Busy     bool        `json:"busy"`
	Panel    forms.Panel `json:"panel"`
}

type Balance struct {
	Address        string `json:"address"`
	Wei            string `json:"wei"`
	Balance        string `json:"balance"`
	Symbol         string `json:"symbol"`
	BelowThreshold bool   `json:"below_threshold"`
}
