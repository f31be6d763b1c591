package repo

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"contract-admin/internal/contract/contracttest"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordConfirmedWrite(t *testing.T) {
	iface := contracttest.Load(t)
	fn, ok := iface.Lookup("setWhitelist")
	require.True(t, ok)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := &dispatch.Invocation{
		ID:        "3f1c",
		Function:  fn,
		Args:      wallet.Args{wallet.ListArg([]string{"0x01", "0x02"}), wallet.ScalarArg("true")},
		Account:   common.HexToAddress("0x1234567890abcdef1234567890abcdef1234abcd"),
		ChainID:   137,
		StartedAt: started,
	}
	res := dispatch.TransactionConfirmed(42, "0xbeef")

	rec := NewRecord(inv, res, started.Add(1500*time.Millisecond))
	assert.Equal(t, "3f1c", rec.InvocationId)
	assert.Equal(t, "setWhitelist", rec.Function)
	assert.Equal(t, "write", rec.Kind)
	assert.Equal(t, `[["0x01","0x02"],"true"]`, rec.Args)
	assert.Equal(t, "confirmed", rec.Outcome)
	assert.Equal(t, "0xbeef", rec.TxHash)
	assert.EqualValues(t, 42, rec.BlockNumber)
	assert.Equal(t, inv.Account.Hex(), rec.Account)
	assert.True(t, strings.EqualFold("0x1234567890abcdef1234567890abcdef1234abcd", rec.Account))
	assert.EqualValues(t, 137, rec.ChainId)
	assert.EqualValues(t, 1500, rec.DurationMs)
	assert.Empty(t, rec.Value)
	assert.Empty(t, rec.Category)
}

func TestNewRecordBlockedPayable(t *testing.T) {
	iface := contracttest.Load(t)
	fn, ok := iface.Lookup("deposit")
	require.True(t, ok)

	inv := &dispatch.Invocation{ID: "a1", Function: fn, Args: wallet.Args{}, Value: big.NewInt(5)}
	res := dispatch.Blocked(dispatch.CategoryConnectionMissing, "connect first")

	rec := NewRecord(inv, res, time.Now())
	assert.Equal(t, "blocked", rec.Outcome)
	assert.Equal(t, string(dispatch.CategoryConnectionMissing), rec.Category)
	assert.Equal(t, "connect first", rec.Message)
	assert.Equal(t, "5", rec.Value)
	assert.Equal(t, "[]", rec.Args)
	assert.Empty(t, rec.Account)
	assert.Zero(t, rec.DurationMs)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "invocation_records", InvocationRecord{}.TableName())
	assert.Equal(t, "event_records", EventRecord{}.TableName())
}
