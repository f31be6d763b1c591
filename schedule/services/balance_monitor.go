package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"contract-admin/config"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/wallet"
	"contract-admin/log"
	"contract-admin/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notify delivers an alert body.
type Notify func(body []byte) error

// BalanceMonitor alerts when the native balance of the contract falls under
// threshold.contract_balance_min.
type BalanceMonitor struct {
	reader    wallet.Reader
	address   common.Address
	threshold *big.Int
	decimals  int32
	symbol    string
	notify    Notify
	timeout   time.Duration
}

// NewBalanceMonitor reads the threshold and currency from conf. A blank
// threshold disables the check.
func NewBalanceMonitor(reader wallet.Reader, conf *config.Conf, notify Notify) (*BalanceMonitor, error) {
	m := &BalanceMonitor{
		reader:   reader,
		address:  common.HexToAddress(conf.Contract.Address),
		decimals: conf.Contract.CurrencyDecimal,
		symbol:   conf.Contract.CurrencySymbol,
		notify:   notify,
		timeout:  30 * time.Second,
	}
	if conf.Threshold.ContractBalanceMin != "" {
		threshold, err := dispatch.ParseValue(conf.Threshold.ContractBalanceMin, conf.Contract.CurrencyDecimal)
		if err != nil {
			return nil, fmt.Errorf("threshold.contract_balance_min: %w", err)
		}
		m.threshold = threshold
	}
	return m, nil
}

// EmailNotify sends alerts to the configured recipients.
func EmailNotify(conf config.EmailConfig) Notify {
	return func(body []byte) error {
		return utils.SendEmail(conf, body, utils.EmailHTML)
	}
}

// Check returns the current balance and whether it is below the threshold.
func (m *BalanceMonitor) Check(ctx context.Context) (*big.Int, bool, error) {
	balance, err := m.reader.Balance(ctx, m.address)
	if err != nil {
		return nil, false, err
	}
	if m.threshold == nil {
		return balance, false, nil
	}
	return balance, balance.Cmp(m.threshold) < 0, nil
}

// Monitor is the scheduled job.
func (m *BalanceMonitor) Monitor() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	balance, low, err := m.Check(ctx)
	if err != nil {
		log.Logger.Error("balance monitor", zap.Error(err))
		return
	}
	shown := dispatch.FormatValue(balance, m.decimals, 4) + " " + m.symbol
	log.Logger.Info("contract balance", zap.String("address", m.address.Hex()), zap.String("balance", shown))
	if !low || m.notify == nil {
		return
	}

	floor := decimal.NewFromBigInt(m.threshold, -m.decimals).String() + " " + m.symbol
	body := fmt.Sprintf(`<p>The balance of contract <b>%s</b> is %s, below the threshold of %s.</p>`,
		m.address.Hex(), shown, floor)
	if err := m.notify([]byte(body)); err != nil {
		log.Logger.Error("balance alert email", zap.Error(err))
	}
}
