package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/minio/sha256-simd"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// Code is a compiled wasm contract.
type Code []byte

// NewCode validates the wasm header of raw.
func NewCode(raw []byte) (Code, error) {
	if len(raw) < len(wasmMagic) || !bytes.Equal(raw[:len(wasmMagic)], wasmMagic) {
		return nil, fmt.Errorf("%w: missing wasm magic header", ErrInvalidCode)
	}
	return Code(raw), nil
}

// Hash is the hex sha256 digest chains report as code_hash.
func (c Code) Hash() string {
	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:])
}

// DeployedCode is the code and encoded interface currently stored on an account.
type DeployedCode struct {
	Code Code
	ABI  []byte
}
