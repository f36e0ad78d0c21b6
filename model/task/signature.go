package task

import (
	"encoding/json"
	"fmt"
)

// Signature binds one argument value to one invocation id.
type Signature[A any] struct {
	Arg A      `json:"arg"`
	ID  string `json:"id"`
}

// NewSignature creates a signature
func NewSignature[A any](arg A, id string) *Signature[A] {
	return &Signature[A]{Arg: arg, ID: id}
}

// Encode returns the JSON text of the signature
func (s *Signature[A]) Encode() (string, error) {
	return Encode(s)
}

// rawSignature detects missing members before the argument is decoded.
type rawSignature struct {
	Arg json.RawMessage `json:"arg"`
	ID  *string         `json:"id"`
}

// DecodeSignature decodes a signature for argument type A. The payload must
// carry both members and the argument must match A.
func DecodeSignature[A any](encoded string) (*Signature[A], error) {
	raw := rawSignature{}
	if err := json.Unmarshal([]byte(encoded), &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid signature: %v", ErrSerialization, err)
	}
	if raw.ID == nil {
		return nil, fmt.Errorf("%w: signature is missing id", ErrSerialization)
	}
	if raw.Arg == nil {
		return nil, fmt.Errorf("%w: signature %v is missing arg", ErrSerialization, *raw.ID)
	}
	ret := &Signature[A]{ID: *raw.ID}
	if err := json.Unmarshal(raw.Arg, &ret.Arg); err != nil {
		return nil, fmt.Errorf("%w: signature %v arg does not match %T: %v", ErrSerialization, ret.ID, ret.Arg, err)
	}
	return ret, nil
}
