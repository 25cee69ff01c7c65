package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-docchat-be/internal/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStore_SaveWritesSaltedFile(t *testing.T) {
	store := NewUploadStore(t.TempDir())

	rel, err := store.Save("report.pdf", []byte("content"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, constant.MessageUploadPrefix+"/"))
	assert.True(t, strings.HasSuffix(rel, "_report.pdf"))

	data, err := os.ReadFile(filepath.Join(store.Root, rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestUploadStore_SameNameNeverCollides(t *testing.T) {
	store := NewUploadStore(t.TempDir())

	first, err := store.Save("doc.pdf", []byte("one"))
	require.NoError(t, err)
	second, err := store.Save("doc.pdf", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestUploadStore_StripsDirectoryComponents(t *testing.T) {
	store := NewUploadStore(t.TempDir())

	rel, err := store.Save("../../etc/passwd", []byte("nope"))
	require.NoError(t, err)

	assert.NotContains(t, rel, "..")
	assert.True(t, strings.HasSuffix(rel, "_passwd"))
}
