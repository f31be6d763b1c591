package chain

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"contract-admin/internal/contract/contracttest"
	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var walletAccount = common.HexToAddress("0x1234567890abcdef1234567890abcdef1234abcd")

// fakeEndpoint serves the eth_ and wallet_ methods of a wallet.
type fakeEndpoint struct {
	mu       sync.Mutex
	accounts []common.Address
	chainID  uint64
	known    map[uint64]bool
	sent     []sendTxParams
	added    []addChainParams
	sendErr  error
}

type ethAPI struct{ e *fakeEndpoint }

func (a *ethAPI) RequestAccounts() ([]common.Address, error) {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	return a.e.accounts, nil
}

func (a *ethAPI) Accounts() []common.Address {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	return a.e.accounts
}

func (a *ethAPI) ChainId() hexutil.Uint64 {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	return hexutil.Uint64(a.e.chainID)
}

func (a *ethAPI) SendTransaction(p sendTxParams) (common.Hash, error) {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	if a.e.sendErr != nil {
		return common.Hash{}, a.e.sendErr
	}
	a.e.sent = append(a.e.sent, p)
	return common.HexToHash("0xfeed"), nil
}

type walletAPI struct{ e *fakeEndpoint }

func (a *walletAPI) SwitchEthereumChain(p switchChainParams) error {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	if !a.e.known[uint64(p.ChainID)] {
		return providerError{code: 4902, msg: "Unrecognized chain ID"}
	}
	a.e.chainID = uint64(p.ChainID)
	return nil
}

func (a *walletAPI) AddEthereumChain(p addChainParams) error {
	a.e.mu.Lock()
	defer a.e.mu.Unlock()
	a.e.added = append(a.e.added, p)
	a.e.known[uint64(p.ChainID)] = true
	return nil
}

func newTestWallet(t *testing.T, chainID uint64) (*RPCWallet, *fakeEndpoint) {
	t.Helper()
	e := &fakeEndpoint{
		accounts: []common.Address{walletAccount},
		chainID:  chainID,
		known:    map[uint64]bool{chainID: true},
	}
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &ethAPI{e}))
	require.NoError(t, server.RegisterName("wallet", &walletAPI{e}))
	t.Cleanup(server.Stop)

	c := rpc.DialInProc(server)
	t.Cleanup(c.Close)

	contract := NewContract(nil, common.HexToAddress(contracttest.Address), contracttest.Load(t).ABI())
	return NewRPCWallet(c, contract), e
}

func TestRPCWalletAccountsAndChain(t *testing.T) {
	w, _ := newTestWallet(t, 137)
	ctx := context.Background()

	accounts, err := w.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{walletAccount}, accounts)

	id, err := w.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(137), id)
}

func TestRPCWalletSwitchUnknownChain(t *testing.T) {
	w, e := newTestWallet(t, 1)
	ctx := context.Background()

	err := w.SwitchChain(ctx, 137)
	require.ErrorIs(t, err, wallet.ErrChainUnknown)

	require.NoError(t, w.AddChain(ctx, wallet.ChainParams{
		ChainID:        137,
		Name:           "Polygon",
		RpcUrl:         "https://polygon-rpc.com",
		ExplorerUrl:    "https://polygonscan.com",
		CurrencyName:   "MATIC",
		CurrencySymbol: "MATIC",
		Decimals:       18,
	}))
	require.Len(t, e.added, 1)
	assert.Equal(t, "Polygon", e.added[0].ChainName)
	assert.Equal(t, []string{"https://polygon-rpc.com"}, e.added[0].RpcUrls)
	assert.Equal(t, int32(18), e.added[0].NativeCurrency.Decimals)

	require.NoError(t, w.SwitchChain(ctx, 137))
	id, err := w.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(137), id)
}

func TestRPCWalletTransact(t *testing.T) {
	w, e := newTestWallet(t, 137)

	tx, err := w.Transact(context.Background(), walletAccount, "setPrice", wallet.Args{wallet.ScalarArg("100")}, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xfeed"), tx.Hash())

	require.Len(t, e.sent, 1)
	sent := e.sent[0]
	assert.Equal(t, walletAccount, sent.From)
	assert.Equal(t, common.HexToAddress(contracttest.Address), sent.To)
	assert.Nil(t, sent.Value)

	want, err := w.abi.Pack("setPrice", big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, hexutil.Bytes(want), sent.Data)
}

func TestRPCWalletTransactValue(t *testing.T) {
	w, e := newTestWallet(t, 137)

	_, err := w.Transact(context.Background(), walletAccount, "deposit", wallet.Args{}, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, e.sent, 1)
	require.NotNil(t, e.sent[0].Value)
	assert.Equal(t, int64(5), e.sent[0].Value.ToInt().Int64())
}

func TestRPCWalletTransactErrors(t *testing.T) {
	w, e := newTestWallet(t, 137)
	ctx := context.Background()

	_, err := w.Transact(ctx, walletAccount, "setPrice", wallet.Args{wallet.ScalarArg("abc")}, nil)
	var argErr *wallet.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Empty(t, e.sent)

	e.sendErr = providerError{code: 4001, msg: "User denied transaction signature."}
	_, err = w.Transact(ctx, walletAccount, "pauseContract", wallet.Args{}, nil)
	assert.ErrorIs(t, err, wallet.ErrUserRejected)

	e.sendErr = providerError{code: 3, msg: "execution reverted", data: revertData(t, "Pausable: paused")}
	_, err = w.Transact(ctx, walletAccount, "pauseContract", wallet.Args{}, nil)
	var revert *wallet.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "Pausable: paused", revert.Reason)

	_, err = w.Transact(ctx, walletAccount, "missing", wallet.Args{}, nil)
	assert.ErrorContains(t, err, `function "missing" not in ABI`)
}

func TestRPCWalletPollEmitsChanges(t *testing.T) {
	w, e := newTestWallet(t, 137)
	ctx := context.Background()

	var events []wallet.Event
	unsubscribe := w.Subscribe(func(ev wallet.Event) { events = append(events, ev) })

	require.NoError(t, w.Poll(ctx))
	assert.Empty(t, events)

	e.mu.Lock()
	e.chainID = 1
	e.mu.Unlock()
	require.NoError(t, w.Poll(ctx))
	require.Len(t, events, 1)
	assert.Equal(t, wallet.Event{Kind: wallet.ChainChanged, ChainID: 1}, events[0])

	e.mu.Lock()
	e.accounts = nil
	e.mu.Unlock()
	require.NoError(t, w.Poll(ctx))
	require.Len(t, events, 2)
	assert.Equal(t, wallet.AccountsChanged, events[1].Kind)
	assert.Empty(t, events[1].Accounts)

	unsubscribe()
	e.mu.Lock()
	e.chainID = 137
	e.mu.Unlock()
	require.NoError(t, w.Poll(ctx))
	assert.Len(t, events, 2)
}
