package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhunter74/collectionmanager/backend/internal/service"
)

func TestNew(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		nestedPath := filepath.Join(t.TempDir(), "a", "b", "c")

		storage, err := New(nestedPath)

		require.NoError(t, err)
		assert.NotNil(t, storage)
		_, err = os.Stat(nestedPath)
		assert.NoError(t, err)
	})

	t.Run("cleans path", func(t *testing.T) {
		tmpDir := t.TempDir()
		storage, err := New(filepath.Join(tmpDir, "media", "..", "media"))

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "media"), storage.rootPath)
	})
}

func TestUploadAndGet(t *testing.T) {
	storage, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	owner, fileId := uuid.New(), uuid.New()

	require.NoError(t, storage.UploadFile(ctx, owner, fileId, []byte("hello")))

	data, err := storage.GetFile(ctx, owner, fileId)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, storage.UploadFile(ctx, owner, fileId, []byte("bye")))
		data, err := storage.GetFile(ctx, owner, fileId)
		require.NoError(t, err)
		assert.Equal(t, []byte("bye"), data)
	})

	t.Run("no temp files left", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(storage.rootPath, owner.String()))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("other owner does not see the file", func(t *testing.T) {
		_, err := storage.GetFile(ctx, uuid.New(), fileId)
		assert.ErrorIs(t, err, service.ErrFileNotFound)
	})
}

func TestDeleteFile(t *testing.T) {
	storage, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	owner, fileId := uuid.New(), uuid.New()
	require.NoError(t, storage.UploadFile(ctx, owner, fileId, []byte("x")))

	require.NoError(t, storage.DeleteFile(ctx, owner, fileId))
	_, err = storage.GetFile(ctx, owner, fileId)
	assert.ErrorIs(t, err, service.ErrFileNotFound)

	assert.NoError(t, storage.DeleteFile(ctx, owner, fileId), "deleting a missing file is not an error")
}

func TestDeleteOwner(t *testing.T) {
	storage, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	kept := uuid.New()
	require.NoError(t, storage.UploadFile(ctx, owner, uuid.New(), []byte("a")))
	require.NoError(t, storage.UploadFile(ctx, owner, uuid.New(), []byte("b")))
	require.NoError(t, storage.UploadFile(ctx, other, kept, []byte("c")))

	require.NoError(t, storage.DeleteOwner(ctx, owner))

	_, err = os.Stat(filepath.Join(storage.rootPath, owner.String()))
	assert.True(t, os.IsNotExist(err))
	data, err := storage.GetFile(ctx, other, kept)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), data)

	assert.NoError(t, storage.DeleteOwner(ctx, uuid.New()))
}
