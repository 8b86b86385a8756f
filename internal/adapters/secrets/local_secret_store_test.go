package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevin07696/ipg-gateway/internal/adapters/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalSecretStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewLocalSecretStore(t.TempDir(), zap.NewNop())

	version, err := store.PutSecret(ctx, "ipg/plugin.json", "payload", map[string]string{"gateway": "Sipag"})
	require.NoError(t, err)
	assert.Equal(t, "v1", version)

	secret, err := store.GetSecret(ctx, "ipg/plugin.json")
	require.NoError(t, err)
	assert.Equal(t, "payload", secret.Value)
	assert.Equal(t, "Sipag", secret.Metadata["gateway"])
	assert.NotEmpty(t, secret.CreatedAt)
}

func TestLocalSecretStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalSecretStore(dir, zap.NewNop())

	_, err := store.PutSecret(context.Background(), "plugin.json", "payload", nil)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "plugin.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLocalSecretStore_PlainText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw"), []byte("plain-value"), 0600))

	secret, err := NewLocalSecretStore(dir, zap.NewNop()).GetSecret(context.Background(), "raw")
	require.NoError(t, err)
	assert.Equal(t, "plain-value", secret.Value)
}

func TestLocalSecretStore_NotFound(t *testing.T) {
	_, err := NewLocalSecretStore(t.TempDir(), zap.NewNop()).GetSecret(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrSecretNotFound))
}

func TestLocalSecretStore_PathEscape(t *testing.T) {
	store := NewLocalSecretStore(t.TempDir(), zap.NewNop())

	_, err := store.GetSecret(context.Background(), "../outside")
	assert.Error(t, err)

	_, err = store.PutSecret(context.Background(), "../../etc/x", "v", nil)
	assert.Error(t, err)
}
