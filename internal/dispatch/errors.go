package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"contract-admin/internal/wallet"
)

// Category is the class of a failed or blocked invocation.
type Category string

const (
	CategoryUserRejected      Category = "UserRejected"
	CategoryContractReverted  Category = "ContractReverted"
	CategoryConnectionMissing Category = "ConnectionMissing"
	CategoryWrongNetwork      Category = "WrongNetwork"
	CategoryUnknownTransport  Category = "UnknownTransportError"
	CategoryChainUnknown      Category = "ChainUnknownToWallet"
	CategoryInvalidInput      Category = "InvalidInput"
	CategoryBusy              Category = "Busy"
)

// MaxTransportDetail is how much of an opaque transport error is shown.
const MaxTransportDetail = 80

const (
	msgUserRejected      = "Transaction rejected by the user in the wallet."
	msgConnectionMissing = "Please connect and verify your wallet to execute transactions."
	msgConnectionRefresh = "Wallet connection is being refreshed, retry in a moment."
	msgChainUnknown      = "The wallet does not know the required network."
	msgUnknownFailure    = "Unknown transaction or query failure."
	msgTxReverted        = "transaction reverted"
)

var revertReasonRe = regexp.MustCompile(`revert reason="(.*?)"`)

// Error is a classified invocation failure with its operator facing message.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return string(e.Category) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Blocking reports whether the invocation was refused before dispatch because
// of the connection state.
func (e *Error) Blocking() bool {
	return e.Category == CategoryConnectionMissing || e.Category == CategoryWrongNetwork
}

func newError(c Category, msg string) *Error {
	return &Error{Category: c, Message: msg}
}

func invalidInput(format string, a ...any) *Error {
	return newError(CategoryInvalidInput, fmt.Sprintf(format, a...))
}

// Classify maps an error from the wallet layer onto a Category. Already
// classified errors are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var revert *wallet.RevertError
	var argErr *wallet.ArgumentError
	switch {
	case errors.As(err, &argErr):
		return &Error{Category: CategoryInvalidInput, Message: "Invalid argument " + argErr.Name + " (" + argErr.Type + "): " + argErr.Err.Error(), Err: err}
	case errors.Is(err, wallet.ErrUserRejected):
		return &Error{Category: CategoryUserRejected, Message: msgUserRejected, Err: err}
	case errors.Is(err, wallet.ErrChainUnknown):
		return &Error{Category: CategoryChainUnknown, Message: msgChainUnknown, Err: err}
	case errors.Is(err, wallet.ErrNoWallet):
		return &Error{Category: CategoryConnectionMissing, Message: msgConnectionMissing, Err: err}
	case errors.As(err, &revert):
		return &Error{Category: CategoryContractReverted, Message: "Contract error: " + reasonOrDefault(revert.Reason), Err: err}
	}

	text := err.Error()
	if m := revertReasonRe.FindStringSubmatch(text); m != nil {
		return &Error{Category: CategoryContractReverted, Message: "Reverted: " + m[1], Err: err}
	}
	if text == "" {
		return &Error{Category: CategoryUnknownTransport, Message: msgUnknownFailure, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		text = "request timed out"
	}
	return &Error{Category: CategoryUnknownTransport, Message: "RPC error: " + Truncate(text, MaxTransportDetail), Err: err}
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return msgTxReverted
	}
	return reason
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
