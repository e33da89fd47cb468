package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStorageService(t *testing.T) {
	ctx := context.Background()
	store, err := NewMockStorageService("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)

	key := EvidenceKey("BK-1", "Odometer.JPG")
	assert.True(t, strings.HasPrefix(key, "bookings/BK-1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	t.Run("Upload URL carries key", func(t *testing.T) {
		u, err := store.GeneratePresignedUploadURL(ctx, key, "image/jpeg", 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:8080/api/v1/upload/"))
		assert.Contains(t, u, "key=bookings%2FBK-1%2F")
	})

	t.Run("Save then exists and read back", func(t *testing.T) {
		exists, _, err := store.FileExists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.SaveFile(key, strings.NewReader("jpeg-bytes")))

		exists, size, err := store.FileExists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(10), size)

		rc, err := store.ReadFile(key)
		require.NoError(t, err)
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "jpeg-bytes", string(b))
	})

	t.Run("Rejects escaping keys", func(t *testing.T) {
		_, _, err := store.FileExists(ctx, "../../etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.ErrorIs(t, store.SaveFile("", strings.NewReader("x")), ErrInvalidKey)
	})
}
