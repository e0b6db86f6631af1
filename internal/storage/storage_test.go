package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := NewLocal(root, "/media")
	require.NoError(t, err)

	t.Run("put, serve and delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "quizz/files/a.txt", strings.NewReader("hello"), 5, "text/plain"))

		data, err := os.ReadFile(filepath.Join(root, "quizz", "files", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "/media/quizz/files/a.txt", store.URL("quizz/files/a.txt"))

		req := httptest.NewRequest(http.MethodGet, "/media/quizz/files/a.txt", nil)
		w := httptest.NewRecorder()
		store.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello", w.Body.String())

		require.NoError(t, store.Delete(ctx, "quizz/files/a.txt"))
		_, err = os.Stat(filepath.Join(root, "quizz", "files", "a.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete missing key is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "nothing/here.pdf"))
	})

	t.Run("rejects keys escaping the root", func(t *testing.T) {
		err := store.Put(ctx, "../outside.txt", strings.NewReader("x"), 1, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestUploader(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := NewLocal(root, "/media/")
	require.NoError(t, err)

	t.Run("stores under prefix with random name", func(t *testing.T) {
		uploader := NewUploader(store, 1)
		fh := fileHeader(t, "Notes.PDF", []byte("%PDF-1.4"))

		key, err := uploader.Save(ctx, "pastPaper/files/", fh)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "pastPaper/files/"))
		assert.True(t, strings.HasSuffix(key, ".pdf"))

		f, err := os.Open(filepath.Join(root, filepath.FromSlash(key)))
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))

		url := uploader.URL(key)
		require.NotNil(t, url)
		assert.Equal(t, "/media/"+key, *url)
	})

	t.Run("empty key renders as nil", func(t *testing.T) {
		assert.Nil(t, NewUploader(store, 1).URL(""))
	})

	t.Run("enforces size limit", func(t *testing.T) {
		uploader := NewUploader(store, 1)
		fh := fileHeader(t, "big.bin", bytes.Repeat([]byte("a"), 1<<20+1))

		_, err := uploader.Save(ctx, "assignments/files/", fh)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("remove ignores blanks and missing files", func(t *testing.T) {
		uploader := NewUploader(store, 1)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		assert.NotPanics(t, func() {
			uploader.Remove(ctx, logger, "", "gone/file.txt")
		})
	})
}
