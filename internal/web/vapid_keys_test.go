package web

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsurePushVAPIDKeysCreatesAndReuses(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, generated, err := EnsurePushVAPIDKeys(dir, "mailto:owner@example.com")
	require.NoError(t, err)
	assert.True(t, generated)
	require.NoError(t, first.Validate())
	assert.Equal(t, "mailto:owner@example.com", first.Subject)

	second, generated, err := EnsurePushVAPIDKeys(dir, "mailto:other@example.com")
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)

	path := filepath.Join(dir, PushVAPIDKeysFileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	stored, err := readVAPIDKeys(path)
	require.NoError(t, err)
	assert.Equal(t, "mailto:other@example.com", stored.Subject)
	assert.Equal(t, first.CreatedAt.Unix(), stored.CreatedAt.Unix())

	// An empty subject keeps the stored one.
	third, _, err := EnsurePushVAPIDKeys(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "mailto:other@example.com", third.Subject)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".vapid-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestEnsurePushVAPIDKeysRejectsBadFile(t *testing.T) {
	cases := map[string]string{
		"empty keys":    `{"publicKey":""}`,
		"not json":      `{`,
		"short public":  `{"publicKey":"` + base64.RawURLEncoding.EncodeToString([]byte("abc")) + `","privateKey":"x"}`,
		"garbage chars": `{"publicKey":"%%%","privateKey":"%%%"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, PushVAPIDKeysFileName), []byte(body), 0o600))
			_, _, err := EnsurePushVAPIDKeys(dir, "")
			assert.Error(t, err)
		})
	}

	_, _, err := EnsurePushVAPIDKeys("  ", "")
	assert.Error(t, err)
}

func TestVAPIDKeysValidate(t *testing.T) {
	pub := make([]byte, vapidPublicKeyLen)
	pub[0] = 0x04
	priv := make([]byte, vapidPrivateKeyLen)

	good := VAPIDKeys{
		PublicKey:  base64.RawURLEncoding.EncodeToString(pub),
		PrivateKey: base64.URLEncoding.EncodeToString(priv),
	}
	assert.NoError(t, good.Validate())

	compressed := good
	pub[0] = 0x02
	compressed.PublicKey = base64.RawURLEncoding.EncodeToString(pub)
	assert.Error(t, compressed.Validate())

	noPrivate := good
	noPrivate.PrivateKey = ""
	assert.Error(t, noPrivate.Validate())
}
