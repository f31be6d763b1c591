package contract

import "strings"

// Mutability is the state mutability class of a contract function.
type Mutability string

const (
	Pure       Mutability = "pure"
	View       Mutability = "view"
	NonPayable Mutability = "nonpayable"
	Payable    Mutability = "payable"
)

// Kind splits functions into the ones that only observe state and the ones that change it.
type Kind string

const (
	Read  Kind = "read"
	Write Kind = "write"
)

// KindOf derives the kind from the mutability.
func KindOf(m Mutability) Kind {
	if m == Pure || m == View {
		return Read
	}
	return Write
}

// Param is one declared input or output.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsList reports whether the parameter is list-typed (dynamic or fixed array).
func (p Param) IsList() bool {
	return IsList(p.Type)
}

// IsList reports whether an ABI type string ends in a list marker, e.g. address[] or uint8[3].
func IsList(t string) bool {
	return strings.HasSuffix(t, "]")
}

// FunctionDescriptor is one callable contract function, immutable once loaded.
type FunctionDescriptor struct {
	Name       string     `json:"name"`
	Inputs     []Param    `json:"inputs"`
	Outputs    []Param    `json:"outputs"`
	Mutability Mutability `json:"stateMutability"`
	Kind       Kind       `json:"kind"`
}

func (f FunctionDescriptor) IsRead() bool { return f.Kind == Read }

func (f FunctionDescriptor) IsPayable() bool { return f.Mutability == Payable }

// Signature returns name(type,...) for logs.
func (f FunctionDescriptor) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		types[i] = in.Type
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}
