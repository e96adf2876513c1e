package types

import (
	"bytes"
	"fmt"

	eos "github.com/eoscanada/eos-go"
)

// Interface is a validated contract ABI together with its canonical binary
// encoding, which is what setabi stores on chain.
type Interface struct {
	abi     eos.ABI
	encoded []byte
}

// NewInterface validates abi and encodes it.
func NewInterface(abi *eos.ABI) (*Interface, error) {
	if abi == nil {
		return nil, fmt.Errorf("%w: nil abi", ErrMalformedInterface)
	}
	for _, action := range abi.Actions {
		if _, err := ActionFields(abi, action.Type); err != nil {
			return nil, fmt.Errorf("action %s: %w", action.Name, err)
		}
	}
	encoded, err := eos.MarshalBinary(*abi)
	if err != nil {
		return nil, fmt.Errorf("encode abi: %w", err)
	}
	return &Interface{abi: *abi, encoded: encoded}, nil
}

// ParseInterface decodes a JSON ABI document and validates it.
func ParseInterface(data []byte) (*Interface, error) {
	abi, err := eos.NewABI(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInterface, err)
	}
	return NewInterface(abi)
}

func (i *Interface) ABI() *eos.ABI {
	return &i.abi
}

// Encoded returns the canonical binary form.
func (i *Interface) Encoded() []byte {
	return i.encoded
}

func FindStruct(abi *eos.ABI, name string) (*eos.StructDef, bool) {
	for i := range abi.Structs {
		if abi.Structs[i].Name == name {
			return &abi.Structs[i], true
		}
	}
	return nil, false
}

// ActionFields resolves structName and flattens its fields, base struct
// fields first.
func ActionFields(abi *eos.ABI, structName string) ([]eos.FieldDef, error) {
	var chain []*eos.StructDef
	seen := map[string]bool{}
	for name := structName; name != ""; {
		if seen[name] {
			return nil, fmt.Errorf("%w: struct %q inherits from itself", ErrMalformedInterface, name)
		}
		seen[name] = true
		def, ok := FindStruct(abi, name)
		if !ok {
			return nil, fmt.Errorf("%w: struct %q not found", ErrMalformedInterface, name)
		}
		chain = append(chain, def)
		name = def.Base
	}

	var fields []eos.FieldDef
	for i := len(chain) - 1; i >= 0; i-- {
		fields = append(fields, chain[i].Fields...)
	}
	return fields, nil
}
