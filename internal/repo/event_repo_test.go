package repo

import (
	"testing"
	"time"

	"contract-admin/internal/chain"
	"contract-admin/internal/contract/contracttest"
	"contract-admin/internal/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ events.Store = (*EventRepo)(nil)

func TestEventRecord(t *testing.T) {
	iface := contracttest.Load(t)
	pool := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	ev, err := chain.DecodeLog(iface.ABI(), contracttest.PoolAddedLog(t, iface, pool, 3, 120, 2))
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewEventRecord(ev, now)
	assert.Equal(t, "PoolAdded", rec.Name)
	assert.Equal(t, common.HexToAddress(contracttest.Address).Hex(), rec.Contract)
	assert.JSONEq(t, `{"pool": "`+pool.Hex()+`", "id": "3"}`, rec.Args)
	assert.Equal(t, ev.TxHash.Hex(), rec.TxHash)
	assert.EqualValues(t, 2, rec.LogIndex)
	assert.EqualValues(t, 120, rec.BlockNumber)
	assert.Equal(t, now, rec.CreatedAt)

	assert.Equal(t, ev, rec.Event())
}
