package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFingerprintRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fp, err := store.Fingerprint(ctx, "guide")
	require.NoError(t, err)
	require.Empty(t, fp)

	require.NoError(t, store.Record(ctx, "guide", "abc123"))

	fp, err = store.Fingerprint(ctx, "guide")
	require.NoError(t, err)
	require.Equal(t, "abc123", fp)
}

func TestRecordOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "guide", "old"))
	require.NoError(t, store.Record(ctx, "guide", "new"))

	fp, err := store.Fingerprint(ctx, "guide")
	require.NoError(t, err)
	require.Equal(t, "new", fp)
}

func TestPruneRemovesStaleDocs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, "keep", "a"))
	require.NoError(t, store.Record(ctx, "drop", "b"))

	require.NoError(t, store.Prune(ctx, map[string]struct{}{"keep": {}}))

	fp, err := store.Fingerprint(ctx, "keep")
	require.NoError(t, err)
	require.Equal(t, "a", fp)

	fp, err = store.Fingerprint(ctx, "drop")
	require.NoError(t, err)
	require.Empty(t, fp)
}
