package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strconv"

	"contract-admin/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ValueKind tags a sanitized value.
type ValueKind uint8

const (
	ScalarValue ValueKind = iota
	SequenceValue
	MappingValue
)

// Entry is one key of a mapping value, in output order.
type Entry struct {
	Key   string
	Value Value
}

// Value is a call result reduced to JSON shaped data. Scalars are strings,
// bools or nil; numbers are always decimal strings.
type Value struct {
	Kind    ValueKind
	Scalar  any
	Items   []Value
	Entries []Entry
}

func Scalar(v any) Value { return Value{Kind: ScalarValue, Scalar: v} }

func Sequence(items ...Value) Value { return Value{Kind: SequenceValue, Items: items} }

func Mapping(entries ...Entry) Value { return Value{Kind: MappingValue, Entries: entries} }

// Lookup returns the value stored under key in a mapping.
func (v Value) Lookup(key string) (Value, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Interface converts v back to plain Go values (string, bool, nil, []any, map[string]any).
func (v Value) Interface() any {
	switch v.Kind {
	case SequenceValue:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case MappingValue:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	}
	return v.Scalar
}

// MarshalJSON writes mappings with their keys in output order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case SequenceValue:
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	case MappingValue:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := e.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return json.Marshal(v.Scalar)
}

// Pretty renders v for a result panel: string scalars as they are, anything
// else as indented JSON.
func (v Value) Pretty() string {
	if s, ok := v.Scalar.(string); ok && v.Kind == ScalarValue {
		return s
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprint(v.Interface())
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

var (
	bigIntType  = reflect.TypeOf(big.Int{})
	addressType = reflect.TypeOf(common.Address{})
	hashType    = reflect.TypeOf(common.Hash{})
)

// Sanitize reduces a decoded call output to a Value.
func Sanitize(x any) Value {
	if x == nil {
		return Scalar(nil)
	}
	switch t := x.(type) {
	case Value:
		return t
	case string:
		return Scalar(t)
	case bool:
		return Scalar(t)
	case *big.Int:
		if t == nil {
			return Scalar(nil)
		}
		return Scalar(t.String())
	case common.Address:
		return Scalar(t.Hex())
	case common.Hash:
		return Scalar(t.Hex())
	case []byte:
		return Scalar(hexutil.Encode(t))
	case json.Number:
		return Scalar(t.String())
	}
	return sanitizeValue(reflect.ValueOf(x))
}

func sanitizeValue(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return Scalar(nil)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Scalar(nil)
		}
		if rv.Type().Elem() == bigIntType {
			return Sanitize(rv.Interface())
		}
		return sanitizeValue(rv.Elem())
	case reflect.Bool:
		return Scalar(rv.Bool())
	case reflect.String:
		return Scalar(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Scalar(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return Scalar(strconv.FormatFloat(rv.Float(), 'f', -1, 64))
	case reflect.Array:
		switch {
		case rv.Type() == addressType, rv.Type() == hashType:
			return Sanitize(rv.Interface())
		case rv.Type().Elem().Kind() == reflect.Uint8:
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Scalar(hexutil.Encode(b))
		}
		return sanitizeItems(rv)
	case reflect.Slice:
		if rv.IsNil() {
			return Sequence()
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar(hexutil.Encode(rv.Bytes()))
		}
		return sanitizeItems(rv)
	case reflect.Map:
		keys := rv.MapKeys()
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Key: fmt.Sprint(k.Interface()), Value: Sanitize(rv.MapIndex(k).Interface())})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		return Mapping(entries...)
	case reflect.Struct:
		if rv.Type() == bigIntType {
			b := rv.Interface().(big.Int)
			return Scalar(b.String())
		}
		return sanitizeStruct(rv)
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return Scalar(s.String())
	}
	return Scalar(fmt.Sprint(rv.Interface()))
}

func sanitizeItems(rv reflect.Value) Value {
	items := make([]Value, rv.Len())
	for i := range items {
		items[i] = Sanitize(rv.Index(i).Interface())
	}
	return Sequence(items...)
}

// sanitizeStruct handles tuples unpacked into anonymous structs. The json tag
// carries the ABI component name.
func sanitizeStruct(rv reflect.Value) Value {
	rt := rv.Type()
	entries := make([]Entry, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok && tag != "" && tag != "-" {
			key = tag
		}
		entries = append(entries, Entry{Key: key, Value: Sanitize(rv.Field(i).Interface())})
	}
	return Mapping(entries...)
}

// Collapse shapes the decoded outputs of a call: one output is returned as
// its own value, fully named outputs become a mapping, anything else a sequence.
func Collapse(outputs []wallet.Output) Value {
	if len(outputs) == 1 {
		return Sanitize(outputs[0].Value)
	}
	named := len(outputs) > 0
	for _, o := range outputs {
		if o.Name == "" {
			named = false
			break
		}
	}
	if named {
		entries := make([]Entry, len(outputs))
		for i, o := range outputs {
			entries[i] = Entry{Key: o.Name, Value: Sanitize(o.Value)}
		}
		return Mapping(entries...)
	}
	items := make([]Value, len(outputs))
	for i, o := range outputs {
		items[i] = Sanitize(o.Value)
	}
	return Sequence(items...)
}
