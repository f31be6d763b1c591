package chain

import (
	"errors"
	"fmt"
	"strings"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 / EIP-3085 provider error codes.
const (
	codeUserRejected  = 4001
	codeUnrecognized  = 4902
	revertedPrefix    = "execution reverted"
	unrecognizedChain = "Unrecognized chain ID"
)

// mapError translates wallet and node errors into the wallet package errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return fmt.Errorf("%w: %v", wallet.ErrUserRejected, err)
		case codeUnrecognized:
			return fmt.Errorf("%w: %v", wallet.ErrChainUnknown, err)
		}
	}
	if strings.Contains(err.Error(), unrecognizedChain) {
		return fmt.Errorf("%w: %v", wallet.ErrChainUnknown, err)
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := revertReason(dataErr.ErrorData()); ok {
			return &wallet.RevertError{Reason: reason}
		}
	}

	msg := err.Error()
	if i := strings.Index(msg, revertedPrefix); i >= 0 {
		reason := strings.TrimSpace(strings.TrimPrefix(msg[i+len(revertedPrefix):], ":"))
		return &wallet.RevertError{Reason: reason}
	}
	return err
}

// revertReason decodes Error(string) revert data. Wallets put it either
// directly in the error data or under a "data" key.
func revertReason(data any) (string, bool) {
	switch d := data.(type) {
	case string:
		b, err := hexutil.Decode(d)
		if err != nil {
			return "", false
		}
		reason, err := abi.UnpackRevert(b)
		if err != nil {
			return "", false
		}
		return reason, true
	case map[string]any:
		if inner, ok := d["data"]; ok {
			return revertReason(inner)
		}
	}
	return "", false
}
