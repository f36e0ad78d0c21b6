package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tasq/service/dao"
)

type record struct {
	ID    string
	Value int
}

func cloneRecord(r *record) *record {
	ret := *r
	return &ret
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, record](func(r *record) string { return r.ID }, cloneRecord)

	loaded, err := s.Load(ctx, "a")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	original := &record{ID: "a", Value: 1}
	require.NoError(t, s.Save(ctx, original))
	original.Value = 100

	loaded, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Value, "store must keep its own copy")

	require.NoError(t, s.Save(ctx, &record{ID: "a", Value: 2}))
	require.NoError(t, s.Save(ctx, &record{ID: "b", Value: 3}))
	list, err := s.SortedList(ctx, func(x, y *record) bool { return x.ID < y.ID })
	require.NoError(t, err)
	assert.Equal(t, []*record{{ID: "a", Value: 2}, {ID: "b", Value: 3}}, list)

	require.NoError(t, s.Delete(ctx, "a"))
	loaded, err = s.Load(ctx, "a")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string, record](func(r *record) string { return r.ID }, nil)
	assert.ErrorIs(t, s.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, s.Save(ctx, &record{}), dao.ErrInvalidID)
}
