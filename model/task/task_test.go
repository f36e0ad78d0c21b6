package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int    `json:"x"`
	Y int    `json:"y"`
	L string `json:"label,omitempty"`
}

func TestSignature_RoundTrip(t *testing.T) {
	t.Run("ints", func(t *testing.T) {
		sig := NewSignature([]int{1, 2, 3}, "018f0c6e-0000-7000-8000-000000000001")
		encoded, err := sig.Encode()
		require.NoError(t, err)
		decoded, err := DecodeSignature[[]int](encoded)
		require.NoError(t, err)
		assert.Equal(t, sig, decoded)
	})
	t.Run("struct", func(t *testing.T) {
		sig := NewSignature(point{X: 1, Y: -2, L: "p"}, "id-1")
		encoded, err := sig.Encode()
		require.NoError(t, err)
		decoded, err := DecodeSignature[point](encoded)
		require.NoError(t, err)
		assert.Equal(t, sig, decoded)
	})
	t.Run("empty struct", func(t *testing.T) {
		sig := NewSignature(struct{}{}, "id-2")
		encoded, err := sig.Encode()
		require.NoError(t, err)
		decoded, err := DecodeSignature[struct{}](encoded)
		require.NoError(t, err)
		assert.Equal(t, sig, decoded)
	})
}

func TestDecodeSignature_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		encoded string
	}{
		{name: "not json", encoded: "{"},
		{name: "missing id", encoded: `{"arg":[1,2]}`},
		{name: "missing arg", encoded: `{"id":"x"}`},
		{name: "shape mismatch", encoded: `{"arg":"abc","id":"x"}`},
		{name: "element mismatch", encoded: `{"arg":[1,"b"],"id":"x"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSignature[[]int](tc.encoded)
			assert.ErrorIs(t, err, ErrSerialization)
		})
	}
}

func TestCodec(t *testing.T) {
	encoded, err := Encode(map[string]int{"a": 1})
	require.NoError(t, err)
	decoded, err := Decode[map[string]int](encoded)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, decoded)

	_, err = Encode(make(chan int))
	assert.ErrorIs(t, err, ErrSerialization)
	_, err = Decode[int](`"six"`)
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestInvocation(t *testing.T) {
	sum := New("sum", func(ctx context.Context, arg []int) (int, error) {
		total := 0
		for _, v := range arg {
			total += v
		}
		return total, nil
	})
	sig := NewSignature([]int{1, 2, 3}, "id")
	invocation := NewInvocation[[]int, int](sum, sig)
	assert.Same(t, sig, invocation.Signature())
	assert.Equal(t, "sum", invocation.Task().Name())
	result, err := invocation.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result)
}
