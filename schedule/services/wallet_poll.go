package services

import (
	"context"
	"time"

	"contract-admin/internal/chain"
	"contract-admin/log"

	"go.uber.org/zap"
)

// WalletPoll asks the wallet for its accounts and chain so changes turn into
// tracker events.
type WalletPoll struct {
	poller  chain.Poller
	timeout time.Duration
}

func NewWalletPoll(poller chain.Poller, interval time.Duration) *WalletPoll {
	return &WalletPoll{poller: poller, timeout: interval}
}

func (w *WalletPoll) Poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.poller.Poll(ctx); err != nil {
		log.Logger.Debug("wallet poll", zap.Error(err))
	}
}
