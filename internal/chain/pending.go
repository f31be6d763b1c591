package chain

import (
	"context"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	bindv2 "github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// pendingTx waits for a submitted transaction on the read-only node. Signed
// locally it carries the transaction, sent through a wallet only the hash.
type pendingTx struct {
	hash    common.Hash
	tx      *types.Transaction
	backend bind.DeployBackend
}

func (p *pendingTx) Hash() common.Hash { return p.hash }

func (p *pendingTx) Wait(ctx context.Context) (*wallet.Receipt, error) {
	var (
		receipt *types.Receipt
		err     error
	)
	if p.tx != nil {
		receipt, err = bind.WaitMined(ctx, p.backend, p.tx)
	} else {
		receipt, err = bindv2.WaitMined(ctx, p.backend, p.hash)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &wallet.Receipt{
		BlockNumber: receipt.BlockNumber.Uint64(),
		Hash:        receipt.TxHash,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}
