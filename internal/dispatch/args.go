package dispatch

import (
	"math/big"
	"strings"

	"contract-admin/internal/contract"
	"contract-admin/internal/wallet"

	"github.com/shopspring/decimal"
)

// SplitList parses a list input. Items are separated by commas and trimmed;
// there is no escaping, so an item can never contain a comma. Blank input is
// the empty list.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// CollectArgs builds the argument vector in the declared input order of fn,
// whatever order the submitted fields came in. Missing fields are blank.
func CollectArgs(fn contract.FunctionDescriptor, inputs map[string]string) wallet.Args {
	args := make(wallet.Args, len(fn.Inputs))
	for i, in := range fn.Inputs {
		raw := inputs[in.Name]
		if in.IsList() {
			args[i] = wallet.ListArg(SplitList(raw))
			continue
		}
		args[i] = wallet.ScalarArg(raw)
	}
	return args
}

// ParseValue converts a display unit amount ("0.5") to base units using
// decimals. Blank means zero.
func ParseValue(raw string, decimals int32) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return big.NewInt(0), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalidInput("Invalid value amount %q.", raw)
	}
	if d.IsNegative() {
		return nil, invalidInput("Value amount cannot be negative.")
	}
	base := d.Shift(decimals)
	if !base.IsInteger() {
		return nil, invalidInput("Value amount %q has more than %d decimal places.", raw, decimals)
	}
	return base.BigInt(), nil
}

// FormatValue renders base units in display units.
func FormatValue(v *big.Int, decimals int32, places int32) string {
	if v == nil {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromBigInt(v, -decimals).StringFixed(places)
}
