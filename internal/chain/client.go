// Package chain implements the wallet capability on go-ethereum: a read-only
// node connection for simulated calls and confirmations, plus either an
// external wallet JSON-RPC endpoint or a keyed signer for transactions.
package chain

import (
	"context"
	"time"

	"contract-admin/log"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// RetryInterval is the pause between dial attempts.
var RetryInterval = 3 * time.Second

// Dial connects to the node at url and checks that it answers.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	if _, err := c.ChainID(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// DialRetry dials until the node answers or ctx is done.
func DialRetry(ctx context.Context, url string) (*ethclient.Client, error) {
	for {
		c, err := Dial(ctx, url)
		if err == nil {
			return c, nil
		}
		log.Logger.Warn("dial retry", zap.String("url", url), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}

// Poller is a wallet whose change events are produced by polling.
type Poller interface {
	Poll(ctx context.Context) error
}
