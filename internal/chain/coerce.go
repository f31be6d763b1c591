package chain

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntPtr = reflect.TypeOf((*big.Int)(nil))

// CoerceArgs converts raw form arguments to the Go values m.Inputs packs.
func CoerceArgs(m abi.Method, args wallet.Args) ([]any, error) {
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("chain: %s takes %d arguments, got %d", m.Name, len(m.Inputs), len(args))
	}
	out := make([]any, len(args))
	for i, in := range m.Inputs {
		v, err := Coerce(in.Type, args[i].Raw())
		if err != nil {
			name := in.Name
			if name == "" {
				name = "arg" + strconv.Itoa(i)
			}
			return nil, &wallet.ArgumentError{Name: name, Type: in.Type.String(), Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// Coerce converts raw, a string or a []string, to the Go type of t.
func Coerce(t abi.Type, raw any) (any, error) {
	switch t.T {
	case abi.SliceTy, abi.ArrayTy:
		items, ok := raw.([]string)
		if !ok {
			return nil, errors.New("expected a comma separated list")
		}
		return coerceList(t, items)
	case abi.TupleTy, abi.FunctionTy:
		return nil, fmt.Errorf("type %s is not supported", t.String())
	}

	s, ok := raw.(string)
	if !ok {
		return nil, errors.New("expected a single value")
	}
	return coerceScalar(t, strings.TrimSpace(s))
}

func coerceList(t abi.Type, items []string) (any, error) {
	elem := *t.Elem
	if elem.T == abi.SliceTy || elem.T == abi.ArrayTy || elem.T == abi.TupleTy {
		return nil, fmt.Errorf("nested type %s is not supported", t.String())
	}
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("expected %d items, got %d", t.Size, len(items))
	}

	var rv reflect.Value
	if t.T == abi.SliceTy {
		rv = reflect.MakeSlice(t.GetType(), len(items), len(items))
	} else {
		rv = reflect.New(t.GetType()).Elem()
	}
	for i, item := range items {
		v, err := coerceScalar(elem, strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		rv.Index(i).Set(reflect.ValueOf(v))
	}
	return rv.Interface(), nil
}

func coerceScalar(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return coerceInt(t, s)
	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", s)
		}
		return b, nil
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%q is not an address", s)
		}
		return common.HexToAddress(s), nil
	case abi.StringTy:
		return s, nil
	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not 0x prefixed hex", s)
		}
		return b, nil
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not 0x prefixed hex", s)
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit in bytes%d", len(b), t.Size)
		}
		rv := reflect.New(t.GetType()).Elem()
		reflect.Copy(rv, reflect.ValueOf(b))
		return rv.Interface(), nil
	}
	return nil, fmt.Errorf("type %s is not supported", t.String())
}

// coerceInt parses decimal or 0x hex integers and range checks them against t.
func coerceInt(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s is out of range for %s", s, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s is out of range for %s", s, t.String())
		}
	}

	goType := t.GetType()
	if goType == bigIntPtr {
		return n, nil
	}
	rv := reflect.New(goType).Elem()
	if t.T == abi.UintTy {
		rv.SetUint(n.Uint64())
	} else {
		rv.SetInt(n.Int64())
	}
	return rv.Interface(), nil
}
