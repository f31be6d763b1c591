// Package contracttest provides an admin contract interface for tests.
package contracttest

import (
	"math/big"
	"strings"
	"testing"

	"contract-admin/internal/contract"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Address is where tests pretend the admin contract is deployed.
const Address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// AdminABI covers every shape the panel handles: reads with and without
// inputs, named multi-value outputs, payable writes, list inputs, a legacy
// constant entry and events with indexed and data arguments.
const AdminABI = `[
	{"type": "constructor", "stateMutability": "nonpayable", "inputs": [{"type": "address", "name": "_admin"}]},
	{"type": "function", "name": "getAdmin", "outputs": [{"type": "address", "name": "addr1"}], "stateMutability": "view", "inputs": []},
	{"type": "function", "name": "setFee", "outputs": [{"type": "bool", "name": ""}], "stateMutability": "nonpayable", "inputs": [{"type": "uint256", "name": "newFee"}]},
	{"type": "function", "name": "setPrice", "outputs": [], "stateMutability": "nonpayable", "inputs": [{"type": "uint256", "name": "amount"}]},
	{"type": "function", "name": "getPrice", "outputs": [{"type": "uint256", "name": ""}], "stateMutability": "view", "inputs": []},
	{"type": "function", "name": "deposit", "outputs": [], "stateMutability": "payable", "inputs": []},
	{"type": "function", "name": "fund", "outputs": [], "stateMutability": "payable", "inputs": [{"type": "string", "name": "memo"}]},
	{"type": "function", "name": "addPool", "outputs": [], "stateMutability": "nonpayable", "inputs": [{"type": "address", "name": "poolAddr"}]},
	{"type": "function", "name": "setWhitelist", "outputs": [], "stateMutability": "nonpayable", "inputs": [{"type": "address[]", "name": "accounts"}, {"type": "bool", "name": "allowed"}]},
	{"type": "function", "name": "getPoolInfo", "outputs": [{"type": "address", "name": "pool"}, {"type": "uint256", "name": "balance"}], "stateMutability": "view", "inputs": [{"type": "uint256", "name": "id"}]},
	{"type": "function", "name": "isPoolActive", "outputs": [{"type": "bool", "name": ""}], "stateMutability": "pure", "inputs": [{"type": "address", "name": ""}]},
	{"type": "function", "name": "pauseContract", "outputs": [], "stateMutability": "nonpayable", "inputs": []},
	{"constant": true, "inputs": [], "name": "totalPools", "outputs": [{"name": "", "type": "uint256"}], "payable": false, "type": "function"},
	{"type": "event", "name": "FeeUpdated", "inputs": [{"type": "uint256", "name": "oldFee", "indexed": true}, {"type": "uint256", "name": "newFee", "indexed": true}], "anonymous": false},
	{"type": "event", "name": "PoolAdded", "inputs": [{"type": "address", "name": "pool", "indexed": true}, {"type": "uint256", "name": "id", "indexed": false}], "anonymous": false}
]`

// Load parses AdminABI and fails the test on error.
func Load(t testing.TB) *contract.Interface {
	t.Helper()
	iface, err := contract.Load(strings.NewReader(AdminABI))
	if err != nil {
		t.Fatalf("load admin abi: %v", err)
	}
	return iface
}

// PoolAddedLog builds the log addPool emits for pool at block, as the admin
// contract deployed at Address would.
func PoolAddedLog(t testing.TB, iface *contract.Interface, pool common.Address, id int64, block uint64, index uint) types.Log {
	t.Helper()
	ev := iface.ABI().Events["PoolAdded"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(id))
	if err != nil {
		t.Fatalf("pack PoolAdded: %v", err)
	}
	return types.Log{
		Address:     common.HexToAddress(Address),
		Topics:      []common.Hash{ev.ID, common.BytesToHash(pool.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block)),
		Index:       index,
	}
}
