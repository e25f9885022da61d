package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Save(ctx, "projects/1/abc.pdf", "application/pdf", strings.NewReader("payload"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, "projects/1/abc.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(ctx, "projects/1/abc.pdf"))
	_, err = store.Open(ctx, "projects/1/abc.pdf")
	assert.Error(t, err)
}

func TestLocalDeleteMissingIsNoOp(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "projects/9/gone.pdf"))
}

func TestLocalRejectsBadKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/../../b", "/etc/passwd"} {
		err := store.Save(ctx, key, "text/plain", strings.NewReader("x"))
		assert.ErrorIs(t, err, errBadKey, "key %q", key)
	}
}
