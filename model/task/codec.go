package task

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSerialization is returned when a payload cannot be encoded or does not
// match the expected shape.
var ErrSerialization = errors.New("task: serialization error")

// Encode returns the JSON text of v
func Encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode %T: %v", ErrSerialization, v, err)
	}
	return string(data), nil
}

// Decode decodes JSON text into a T
func Decode[T any](encoded string) (T, error) {
	var ret T
	if err := json.Unmarshal([]byte(encoded), &ret); err != nil {
		return ret, fmt.Errorf("%w: failed to decode %T: %v", ErrSerialization, ret, err)
	}
	return ret, nil
}
