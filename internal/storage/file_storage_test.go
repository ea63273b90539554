package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_SaveAndDelete(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)
	ctx := context.Background()

	orderID := uuid.New()
	relativePath, written, err := fs.Save(ctx, orderID, "отчёт.docx", strings.NewReader("содержимое файла"))

	require.NoError(t, err)
	assert.Greater(t, written, int64(0))
	assert.True(t, fs.Exists(relativePath))

	require.NoError(t, fs.Delete(ctx, relativePath))
	assert.False(t, fs.Exists(relativePath))
}

func TestFileStorage_DeleteMissingIsNil(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)

	// Политика очистки зовёт Delete повторно, отсутствие файла — не ошибка.
	assert.NoError(t, fs.Delete(context.Background(), "no/such/file.bin"))
}

func TestFileStorage_RejectsOversizedFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)

	big := strings.NewReader(strings.Repeat("x", 1024*1024+1))
	_, _, err = fs.Save(context.Background(), uuid.New(), "big.bin", big)

	assert.Error(t, err)
}

func TestFileStorage_SanitizesFilename(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)

	relativePath, _, err := fs.Save(context.Background(), uuid.New(), "../../etc/passwd", strings.NewReader("data"))

	assert.NoError(t, err)
	assert.NotContains(t, relativePath, "..")
	assert.True(t, fs.Exists(relativePath))
}

func TestFileStorage_Open(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), 1)
	require.NoError(t, err)
	ctx := context.Background()

	relativePath, _, err := fs.Save(ctx, uuid.New(), "note.txt", strings.NewReader("привет"))
	require.NoError(t, err)

	f, err := fs.Open(ctx, relativePath)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 32)
	n, _ := f.Read(buf)
	assert.Equal(t, "привет", string(buf[:n]))
}
