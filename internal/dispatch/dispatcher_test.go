package dispatch_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"contract-admin/internal/connection"
	"contract-admin/internal/contract"
	"contract-admin/internal/contract/contracttest"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/forms"
	"contract-admin/internal/wallet"
	"contract-admin/internal/wallet/wallettest"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	operator = common.HexToAddress("0x1234567890abcdef1234567890abcdef1234abcd")
	polygon  = wallet.ChainParams{ChainID: 137, Name: "Polygon", CurrencySymbol: "MATIC", Decimals: 18}
)

// untouchable fails the test if the connection state is read.
type untouchable struct{ t *testing.T }

func (u untouchable) State() connection.State {
	u.t.Fatal("connection state inspected")
	return connection.State{}
}

// fixedState serves one connection state.
type fixedState connection.State

func (f fixedState) State() connection.State { return connection.State(f) }

type harness struct {
	wallet     *wallettest.Wallet
	tracker    *connection.Tracker
	dispatcher *dispatch.Dispatcher
	panels     *dispatch.MemoryPanels

	mu       sync.Mutex
	finished []dispatch.Result
}

func newHarness(t *testing.T, chain uint64, connect bool) *harness {
	t.Helper()
	h := &harness{
		wallet: wallettest.New(operator, chain),
		panels: dispatch.NewMemoryPanels(),
	}
	h.tracker = connection.NewTracker(h.wallet, polygon)
	if connect {
		require.NoError(t, h.tracker.Connect(context.Background()))
	}
	h.dispatcher = dispatch.New(contracttest.Load(t), h.wallet, h.wallet, h.tracker, dispatch.Options{
		Selection: []string{contract.SelectAll},
		Panels:    h.panels,
		Hooks: []dispatch.Hook{dispatch.HookFunc(func(_ context.Context, _ *dispatch.Invocation, res dispatch.Result) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.finished = append(h.finished, res)
		})},
	})
	return h
}

func (h *harness) panel(t *testing.T, fn string) forms.Panel {
	t.Helper()
	all, err := h.dispatcher.Panels(context.Background())
	require.NoError(t, err)
	p, ok := all[fn]
	require.True(t, ok, "no panel for %s", fn)
	return p
}

func TestSetPriceSendsTransaction(t *testing.T) {
	h := newHarness(t, 137, true)
	h.wallet.BlockNumber = 42
	h.wallet.TxHash = common.HexToHash("0x5eed")

	res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{
		Function: "setPrice",
		Inputs:   map[string]string{"amount": "100"},
	})

	require.Equal(t, dispatch.OutcomeConfirmed, res.Outcome, res.Message)
	assert.Equal(t, uint64(42), res.BlockNumber)
	assert.Equal(t, h.wallet.TxHash.Hex(), res.Hash)

	require.Len(t, h.wallet.Transactions, 1)
	tx := h.wallet.Transactions[0]
	assert.Equal(t, "setPrice", tx.Function)
	assert.Equal(t, []any{"100"}, tx.Args.Raw())
	assert.Equal(t, operator, tx.From)
	assert.Nil(t, tx.Value)
	assert.Empty(t, h.wallet.Calls)

	p := h.panel(t, "setPrice")
	assert.Equal(t, forms.ToneSuccess, p.Tone)
	assert.Contains(t, p.Text, "Block: 42")
	assert.Contains(t, p.Text, "Hash: "+h.wallet.TxHash.Hex())
	assert.False(t, p.Busy)
	assert.False(t, h.dispatcher.Busy("setPrice"))
}

func TestGetPriceReadsWithoutConnection(t *testing.T) {
	w := wallettest.New(operator, 1)
	w.Outputs["getPrice"] = []wallet.Output{{Value: big.NewInt(100)}}
	d := dispatch.New(contracttest.Load(t), w, w, untouchable{t}, dispatch.Options{Selection: []string{contract.SelectAll}})

	res := d.Dispatch(context.Background(), dispatch.Request{Function: "getPrice"})

	require.Equal(t, dispatch.OutcomeSuccess, res.Outcome, res.Message)
	assert.Equal(t, "100", res.Value.Interface())
	require.Len(t, w.Calls, 1)
	assert.Equal(t, "getPrice", w.Calls[0].Function)
	assert.Empty(t, w.Calls[0].Args)
	assert.Empty(t, w.Transactions)

	assert.Equal(t, "100", res.Panel().Text)
}

func TestReadWithNamedOutputs(t *testing.T) {
	h := newHarness(t, 137, false)
	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	h.wallet.Outputs["getPoolInfo"] = []wallet.Output{
		{Name: "pool", Value: pool},
		{Name: "balance", Value: big.NewInt(5)},
	}

	res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{
		Function: "getPoolInfo",
		Inputs:   map[string]string{"id": "7"},
	})

	require.Equal(t, dispatch.OutcomeSuccess, res.Outcome)
	assert.Equal(t, map[string]any{"pool": pool.Hex(), "balance": "5"}, res.Value.Interface())
	assert.Equal(t, "{\n  \"pool\": \""+pool.Hex()+"\",\n  \"balance\": \"5\"\n}", res.Panel().Text)
}

func TestWriteBlocked(t *testing.T) {
	tests := []struct {
		name     string
		chain    uint64
		connect  bool
		category dispatch.Category
		message  string
	}{
		{
			name:     "no account",
			chain:    137,
			category: dispatch.CategoryConnectionMissing,
			message:  "Please connect and verify your wallet to execute transactions.",
		},
		{
			name:     "wrong network",
			chain:    1,
			connect:  true,
			category: dispatch.CategoryWrongNetwork,
			message:  "Wrong network (ID: 1). Switch to Polygon (ID: 137).",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.chain, tt.connect)

			res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{
				Function: "setPrice",
				Inputs:   map[string]string{"amount": "100"},
			})

			assert.Equal(t, dispatch.OutcomeBlocked, res.Outcome)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.message, res.Message)
			assert.Empty(t, h.wallet.Transactions)
			assert.False(t, h.dispatcher.Busy("setPrice"))

			p := h.panel(t, "setPrice")
			assert.Equal(t, forms.ToneDanger, p.Tone)
			assert.Equal(t, tt.message, p.Text)
			require.Len(t, h.finished, 1)
		})
	}
}

func TestWrongNetworkBlocksUntilSwitched(t *testing.T) {
	h := newHarness(t, 1, true)
	req := dispatch.Request{Function: "pauseContract"}

	assert.Equal(t, dispatch.OutcomeBlocked, h.dispatcher.Dispatch(context.Background(), req).Outcome)

	require.NoError(t, h.tracker.SwitchNetwork(context.Background()))
	assert.Equal(t, dispatch.OutcomeConfirmed, h.dispatcher.Dispatch(context.Background(), req).Outcome)
}

func TestResyncBlocksWithRefreshMessage(t *testing.T) {
	w := wallettest.New(operator, 137)
	chain := uint64(137)
	refreshing := fixedState{
		Account: &operator,
		ChainID: &chain,
		Status:  connection.StatusConnecting,
		Message: "Connecting...",
	}
	d := dispatch.New(contracttest.Load(t), w, w, refreshing, dispatch.Options{Selection: []string{contract.SelectAll}})

	res := d.Dispatch(context.Background(), dispatch.Request{Function: "pauseContract"})

	require.Equal(t, dispatch.OutcomeBlocked, res.Outcome)
	assert.Equal(t, dispatch.CategoryConnectionMissing, res.Category)
	assert.Equal(t, "Wallet connection is being refreshed, retry in a moment.", res.Message)
	assert.NotContains(t, res.Message, "Wrong network")
	assert.Zero(t, w.TransactionCount())
}

func TestListInputsAreSplitAndTrimmed(t *testing.T) {
	h := newHarness(t, 137, true)

	res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{
		Function: "setWhitelist",
		Inputs:   map[string]string{"allowed": "true", "accounts": "a, b ,c"},
	})

	require.Equal(t, dispatch.OutcomeConfirmed, res.Outcome)
	require.Len(t, h.wallet.Transactions, 1)
	assert.Equal(t, []any{[]string{"a", "b", "c"}, "true"}, h.wallet.Transactions[0].Args.Raw())
}

func TestPayableValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *big.Int
	}{
		{"blank", "", big.NewInt(0)},
		{"spaces", "  ", big.NewInt(0)},
		{"half", "0.5", big.NewInt(500000000000000000)},
		{"whole", "2", new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 137, true)
			res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "deposit", Value: tt.value})

			require.Equal(t, dispatch.OutcomeConfirmed, res.Outcome, res.Message)
			require.Len(t, h.wallet.Transactions, 1)
			require.NotNil(t, h.wallet.Transactions[0].Value)
			assert.Equal(t, 0, tt.want.Cmp(h.wallet.Transactions[0].Value))
		})
	}
}

func TestPayableValueRejected(t *testing.T) {
	for _, value := range []string{"-1", "abc", "0.0000000000000000001"} {
		t.Run(value, func(t *testing.T) {
			h := newHarness(t, 137, true)
			res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "deposit", Value: value})

			assert.Equal(t, dispatch.OutcomeFailure, res.Outcome)
			assert.Equal(t, dispatch.CategoryInvalidInput, res.Category)
			assert.Empty(t, h.wallet.Transactions)
			assert.False(t, h.dispatcher.Busy("deposit"))
		})
	}
}

func TestUnknownFunction(t *testing.T) {
	h := newHarness(t, 137, true)
	res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "selfDestruct"})

	assert.Equal(t, dispatch.OutcomeFailure, res.Outcome)
	assert.Equal(t, dispatch.CategoryInvalidInput, res.Category)
	assert.Empty(t, h.finished)
}

func TestUnselectedFunctionIsUnknown(t *testing.T) {
	w := wallettest.New(operator, 137)
	d := dispatch.New(contracttest.Load(t), w, w, untouchable{t}, dispatch.Options{Selection: []string{"getAdmin"}})

	assert.Equal(t, []string{"getAdmin"}, d.Functions())
	res := d.Dispatch(context.Background(), dispatch.Request{Function: "getPrice"})
	assert.Equal(t, dispatch.CategoryInvalidInput, res.Category)
}

func TestWriteFailures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(w *wallettest.Wallet)
		category dispatch.Category
		message  string
	}{
		{
			name:     "rejected",
			setup:    func(w *wallettest.Wallet) { w.TransactErr = wallet.ErrUserRejected },
			category: dispatch.CategoryUserRejected,
			message:  "Transaction rejected by the user in the wallet.",
		},
		{
			name:     "revert reason",
			setup:    func(w *wallettest.Wallet) { w.TransactErr = &wallet.RevertError{Reason: "Ownable: caller is not the owner"} },
			category: dispatch.CategoryContractReverted,
			message:  "Contract error: Ownable: caller is not the owner",
		},
		{
			name:     "reverted receipt",
			setup:    func(w *wallettest.Wallet) { w.Reverted = true },
			category: dispatch.CategoryContractReverted,
			message:  "Contract error: transaction reverted",
		},
		{
			name:     "transport",
			setup:    func(w *wallettest.Wallet) { w.WaitErr = errors.New("connection reset by peer") },
			category: dispatch.CategoryUnknownTransport,
			message:  "RPC error: connection reset by peer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 137, true)
			tt.setup(h.wallet)

			res := h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "pauseContract"})

			assert.Equal(t, dispatch.OutcomeFailure, res.Outcome)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.message, res.Message)
			assert.False(t, h.dispatcher.Busy("pauseContract"))

			p := h.panel(t, "pauseContract")
			assert.Equal(t, "Execution failed:", p.Title)
			assert.Equal(t, tt.message, p.Text)
		})
	}
}

func TestSubmitLock(t *testing.T) {
	h := newHarness(t, 137, true)
	h.wallet.Gate = make(chan struct{})
	ctx := context.Background()

	inv, err := h.dispatcher.Begin(ctx, dispatch.Request{Function: "pauseContract"})
	require.NoError(t, err)
	assert.True(t, h.dispatcher.Busy("pauseContract"))
	assert.Equal(t, dispatch.ProcessingPanel("pauseContract"), h.panel(t, "pauseContract"))

	done := make(chan dispatch.Result, 1)
	go func() { done <- h.dispatcher.Run(ctx, inv) }()

	_, err = h.dispatcher.Begin(ctx, dispatch.Request{Function: "pauseContract"})
	var derr *dispatch.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, dispatch.CategoryBusy, derr.Category)

	// other functions are independent
	other := h.dispatcher.Dispatch(ctx, dispatch.Request{Function: "getPrice"})
	assert.Equal(t, dispatch.OutcomeSuccess, other.Outcome)

	close(h.wallet.Gate)
	assert.Equal(t, dispatch.OutcomeConfirmed, (<-done).Outcome)
	assert.False(t, h.dispatcher.Busy("pauseContract"))

	_, err = h.dispatcher.Begin(ctx, dispatch.Request{Function: "pauseContract"})
	assert.NoError(t, err)
}

func TestPanelsPublishedInOrder(t *testing.T) {
	h := newHarness(t, 137, true)
	var texts []string
	h.dispatcher.OnPanel(func(fn string, p forms.Panel) {
		if fn == "setPrice" {
			texts = append(texts, p.Text)
		}
	})
	h.wallet.TxHash = common.HexToHash("0x1234567890abcdef")

	h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "setPrice", Inputs: map[string]string{"amount": "1"}})

	require.Len(t, texts, 3)
	assert.Equal(t, "Processing call to setPrice...", texts[0])
	assert.True(t, strings.HasPrefix(texts[1], "Transaction sent. Hash: 0x00000000..."), texts[1])
	assert.True(t, strings.HasPrefix(texts[2], "Block: 1"), texts[2])
}

func TestResyncOnConfirm(t *testing.T) {
	h := newHarness(t, 137, true)
	var resyncs int
	h.dispatcher.AddHook(dispatch.ResyncOnConfirm(func() error {
		resyncs++
		return nil
	}))

	h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "pauseContract"})
	h.dispatcher.Dispatch(context.Background(), dispatch.Request{Function: "getPrice"})

	assert.Equal(t, 1, resyncs)
}
