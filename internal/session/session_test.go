package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New("s1")

	type payload struct {
		N int    `json:"n"`
		S string `json:"s"`
	}
	require.NoError(t, s.Set("k", payload{N: 3, S: "x"}))

	var got payload
	ok, err := s.Get("k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{N: 3, S: "x"}, got)
}

func TestGetAbsentKey(t *testing.T) {
	s := New("s1")

	var v int
	ok, err := s.Get("missing", &v)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.Dirty())
}

func TestSetMarksDirty(t *testing.T) {
	s := New("s1")
	require.False(t, s.Dirty())

	require.NoError(t, s.Set("k", 1))
	require.True(t, s.Dirty())
}

func TestDeleteAbsentKeyKeepsClean(t *testing.T) {
	s := New("s1")
	s.Delete("missing")
	require.False(t, s.Dirty())
}

func TestDeleteMarksDirty(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.Set("k", 1))

	s2 := Restore("s1", s.Values())
	require.False(t, s2.Dirty())

	s2.Delete("k")
	require.True(t, s2.Dirty())

	var v int
	ok, err := s2.Get("k", &v)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemStoreLoadUnknownIDReturnsFreshSession(t *testing.T) {
	store := NewMemStore()

	s, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, "nobody", s.ID())
	require.Empty(t, s.Values())
	require.False(t, s.Dirty())
}

func TestMemStoreSnapshotsAreIndependent(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	s1, err := store.Load(ctx, "v")
	require.NoError(t, err)
	require.NoError(t, s1.Set("k", "one"))
	require.NoError(t, store.Save(ctx, s1))

	s2, err := store.Load(ctx, "v")
	require.NoError(t, err)
	s3, err := store.Load(ctx, "v")
	require.NoError(t, err)

	// s2's mutation is invisible to s3 until saved.
	require.NoError(t, s2.Set("k", "two"))

	var got string
	ok, err := s3.Get("k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", got)
}
