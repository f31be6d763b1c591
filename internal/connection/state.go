package connection

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the coarse connection status shown in the status region.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusWrongNetwork Status = "wrong_network"
	StatusNoWallet     Status = "no_wallet"
	StatusFailed       Status = "failed"
)

// Labels of the connect / switch network action control.
const (
	ActionConnect   = "Connect Wallet"
	ActionReconnect = "Reconnect"
	ActionSwitch    = "Switch Network"
)

// State is the connection state of the operator's wallet. Only the Tracker writes it.
type State struct {
	Account           *common.Address `json:"account,omitempty"`
	ChainID           *uint64         `json:"chainId,omitempty"`
	OnRequiredNetwork bool            `json:"isOnRequiredNetwork"`
	Status            Status          `json:"status"`
	Message           string          `json:"message"`
	// Action is the label of the connect / switch control, empty when the control is hidden.
	Action string `json:"action,omitempty"`
}

// Connected reports whether the state allows sending transactions.
func (s State) Connected() bool {
	return s.Account != nil && s.OnRequiredNetwork
}

// Reader gives read access to the connection state.
type Reader interface {
	State() State
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(a common.Address) string {
	hex := strings.ToLower(a.Hex())
	return hex[:6] + "..." + hex[len(hex)-4:]
}

func wrongNetworkMessage(current uint64, name string, required uint64) string {
	return fmt.Sprintf("Wrong network (ID: %d). Switch to %s (ID: %d).", current, name, required)
}
