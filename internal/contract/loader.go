// Package contract loads a contract interface description (ABI) and filters it
// down to the functions the operator wants on the panel.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"contract-admin/log"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"go.uber.org/zap"
)

var ErrEmptyABI = errors.New("contract: empty interface description")

// abiEntry mirrors one element of an ABI JSON array.
type abiEntry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Payable         bool    `json:"payable,omitempty"`
	Constant        bool    `json:"constant,omitempty"`
}

// envelope covers compiler artifacts ({"abi": [...]}) and explorer responses
// ({"status": "1", "message": "OK", "result": "[...]"}).
type envelope struct {
	ABI     json.RawMessage `json:"abi"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Interface is a loaded interface description.
type Interface struct {
	functions []FunctionDescriptor
	index     map[string]int
	abi       abi.ABI
}

// LoadFile reads the interface description at path.
func LoadFile(path string) (*Interface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Load parses an ABI array, a compiler artifact or an explorer envelope.
func Load(r io.Reader) (*Interface, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err := extractABI(bytes.TrimSpace(data))
	if err != nil {
		return nil, err
	}

	var entries []abiEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("contract: decode abi entries: %w", err)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("contract: parse abi: %w", err)
	}

	iface := &Interface{index: make(map[string]int), abi: parsed}
	for _, e := range entries {
		if e.Type != "function" {
			continue
		}
		if _, dup := iface.index[e.Name]; dup {
			log.Logger.Warn("overloaded function ignored", zap.String("function", e.Name))
			continue
		}
		iface.index[e.Name] = len(iface.functions)
		iface.functions = append(iface.functions, newDescriptor(e))
	}
	return iface, nil
}

func extractABI(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyABI
	}
	if data[0] == '[' {
		return data, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("contract: decode abi document: %w", err)
	}
	switch {
	case len(env.ABI) > 0:
		return env.ABI, nil
	case len(env.Result) > 0 && env.Result[0] == '"':
		var s string
		if err := json.Unmarshal(env.Result, &s); err != nil {
			return nil, err
		}
		if env.Status == "0" {
			return nil, fmt.Errorf("contract: explorer error: %s: %s", env.Message, s)
		}
		return []byte(s), nil
	case len(env.Result) > 0:
		return env.Result, nil
	}
	return nil, ErrEmptyABI
}

func newDescriptor(e abiEntry) FunctionDescriptor {
	m := Mutability(e.StateMutability)
	if m == "" {
		switch {
		case e.Constant:
			m = View
		case e.Payable:
			m = Payable
		default:
			m = NonPayable
		}
	}

	inputs := make([]Param, len(e.Inputs))
	for i, in := range e.Inputs {
		if in.Name == "" {
			in.Name = "arg" + strconv.Itoa(i)
		}
		inputs[i] = in
	}
	outputs := append([]Param(nil), e.Outputs...)

	return FunctionDescriptor{
		Name:       e.Name,
		Inputs:     inputs,
		Outputs:    outputs,
		Mutability: m,
		Kind:       KindOf(m),
	}
}

// Functions returns every function in declaration order.
func (i *Interface) Functions() []FunctionDescriptor {
	return append([]FunctionDescriptor(nil), i.functions...)
}

// Lookup resolves a function by name.
func (i *Interface) Lookup(name string) (FunctionDescriptor, bool) {
	idx, ok := i.index[name]
	if !ok {
		return FunctionDescriptor{}, false
	}
	return i.functions[idx], true
}

// SelectAll is the selection entry that keeps every declared function.
const SelectAll = "*"

// Select keeps the named functions in declaration order. No names selects
// nothing; SelectAll among the names selects every function.
func (i *Interface) Select(names []string) []FunctionDescriptor {
	if slices.Contains(names, SelectAll) {
		return i.Functions()
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []FunctionDescriptor
	for _, f := range i.functions {
		if _, ok := wanted[f.Name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Missing returns the selected names the interface does not declare.
func (i *Interface) Missing(names []string) []string {
	var out []string
	for _, n := range names {
		if n == SelectAll {
			continue
		}
		if _, ok := i.index[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// ABI returns the parsed go-ethereum ABI for packing and unpacking.
func (i *Interface) ABI() abi.ABI {
	return i.abi
}
