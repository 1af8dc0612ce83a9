package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore(Entry{Account: "acc1", Balance: 10})

	e, err := s.Get(t.Context(), "acc1")
	require.NoError(t, err)
	require.Equal(t, uint64(10), e.Balance)

	_, err = s.Get(t.Context(), "nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(t.Context(), Entry{Account: "acc1", Balance: 3}))
	e, err = s.Get(t.Context(), "acc1")
	require.NoError(t, err)
	require.Equal(t, uint64(3), e.Balance)
}

func TestMarshal(t *testing.T) {
	in := Entry{Account: "acc1", Balance: 42, UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"account":"acc1","balance":42,"updated_at":"2024-01-02T03:04:05Z"}`, string(data))

	out, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
