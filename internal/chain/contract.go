package chain

import (
	"context"
	"fmt"
	"math/big"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Contract is the read-only connection to the administered contract. It
// implements wallet.Reader.
type Contract struct {
	address common.Address
	abi     abi.ABI
	client  *ethclient.Client
	bound   *bind.BoundContract
}

// NewContract binds address with its parsed ABI on client.
func NewContract(client *ethclient.Client, address common.Address, parsed abi.ABI) *Contract {
	c := &Contract{address: address, abi: parsed, client: client}
	if client != nil {
		c.bound = bind.NewBoundContract(address, parsed, client, client, client)
	}
	return c
}

func (c *Contract) method(function string) (abi.Method, error) {
	m, ok := c.abi.Methods[function]
	if !ok {
		return abi.Method{}, fmt.Errorf("chain: function %q not in ABI", function)
	}
	return m, nil
}

// Pack encodes the call data of function with raw args.
func (c *Contract) Pack(function string, args wallet.Args) ([]byte, []any, error) {
	m, err := c.method(function)
	if err != nil {
		return nil, nil, err
	}
	params, err := CoerceArgs(m, args)
	if err != nil {
		return nil, nil, err
	}
	data, err := c.abi.Pack(function, params...)
	if err != nil {
		return nil, nil, err
	}
	return data, params, nil
}

// Call simulates function against the latest block and decodes its outputs.
func (c *Contract) Call(ctx context.Context, function string, args wallet.Args) ([]wallet.Output, error) {
	m, err := c.method(function)
	if err != nil {
		return nil, err
	}
	params, err := CoerceArgs(m, args)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, function, params...); err != nil {
		return nil, mapError(err)
	}

	outputs := make([]wallet.Output, len(out))
	for i, v := range out {
		name := ""
		if i < len(m.Outputs) {
			name = m.Outputs[i].Name
		}
		outputs[i] = wallet.Output{Name: name, Value: v}
	}
	return outputs, nil
}

// Balance returns the native balance of account.
func (c *Contract) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.client.BalanceAt(ctx, account, nil)
}
