// Package wallet describes the external wallet capability the panel calls
// through. Signing, RPC transport and chain state stay on the other side of
// these interfaces.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUserRejected is returned when the operator declines a request in the wallet.
	ErrUserRejected = errors.New("wallet: request rejected by user")

	// ErrChainUnknown is returned by SwitchChain when the wallet has no entry for the chain.
	ErrChainUnknown = errors.New("wallet: chain unknown to wallet")

	// ErrNoWallet is returned when no wallet endpoint answers.
	ErrNoWallet = errors.New("wallet: not detected")

	// ErrSwitchUnsupported is returned by wallets bound to a single chain.
	ErrSwitchUnsupported = errors.New("wallet: chain switching not supported")
)

// RevertError carries the reason a contract call reverted with.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "wallet: execution reverted"
	}
	return "wallet: execution reverted: " + e.Reason
}

// ArgumentError reports a raw argument that cannot be converted to its ABI type.
type ArgumentError struct {
	Name string
	Type string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s (%s): %v", e.Name, e.Type, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Arg is one raw argument. List-typed parameters carry List, everything else Scalar.
// Conversion to the ABI type happens on the wallet side.
type Arg struct {
	Scalar string
	List   []string
	IsList bool
}

func ScalarArg(s string) Arg { return Arg{Scalar: s} }

func ListArg(items []string) Arg { return Arg{List: items, IsList: true} }

// Raw returns the argument as a string or a []string.
func (a Arg) Raw() any {
	if a.IsList {
		return a.List
	}
	return a.Scalar
}

func (a Arg) String() string {
	if a.IsList {
		return "[" + strings.Join(a.List, ",") + "]"
	}
	return a.Scalar
}

// Args is the argument vector of one invocation, aligned with the declared inputs.
type Args []Arg

// Raw returns the vector as []any of string / []string values.
func (a Args) Raw() []any {
	out := make([]any, len(a))
	for i, arg := range a {
		out[i] = arg.Raw()
	}
	return out
}

// Output is one decoded return value. Value keeps whatever the call layer decoded.
type Output struct {
	Name  string
	Value any
}

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	BlockNumber uint64
	Hash        common.Hash
	Success     bool
}

// PendingTx is a submitted transaction that may be waited on.
type PendingTx interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*Receipt, error)
}

// Reader is the read-only connection: simulated calls, no authorization.
type Reader interface {
	Call(ctx context.Context, function string, args Args) ([]Output, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Signer is the signing connection backed by the operator's wallet.
type Signer interface {
	Transact(ctx context.Context, from common.Address, function string, args Args, value *big.Int) (PendingTx, error)
}

// EventKind tells which wallet property changed.
type EventKind uint8

const (
	AccountsChanged EventKind = iota + 1
	ChainChanged
)

func (k EventKind) String() string {
	switch k {
	case AccountsChanged:
		return "accountsChanged"
	case ChainChanged:
		return "chainChanged"
	}
	return "unknown"
}

// Event is a change notification from the wallet.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  uint64
}

// ChainParams is what a wallet needs to register a chain it does not know.
type ChainParams struct {
	ChainID        uint64
	Name           string
	RpcUrl         string
	ExplorerUrl    string
	CurrencyName   string
	CurrencySymbol string
	Decimals       int32
}

// Provider covers account access, network identity and change notifications.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	SwitchChain(ctx context.Context, chainID uint64) error
	AddChain(ctx context.Context, params ChainParams) error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Capability is everything the panel needs from a wallet.
type Capability interface {
	Provider
	Reader
	Signer
}
