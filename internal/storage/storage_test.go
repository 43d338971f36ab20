package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		`C:\srv\app\uploads\intro.mp4`:      "/uploads/intro.mp4",
		"/var/lib/app/uploads/a/manual.pdf": "/uploads/a/manual.pdf",
		"uploads/photo.png":                 "/uploads/photo.png",
		"/uploads/photo.png":                "/uploads/photo.png",
		"/data/uploads/old/uploads/x.png":   "/uploads/x.png",
		`relative\docs\sheet.pdf`:           "relative/docs/sheet.pdf",
		"/srv/uploads/1f-uploads.pdf":       "/uploads/1f-uploads.pdf",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePath(input), input)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"werkblad 1 (final).pdf": "werkblad_1__final_.pdf",
		"../../etc/passwd":       "passwd",
		`C:\Users\x\foto.jpg`:    "foto.jpg",
		".hidden":                "hidden",
		"":                       "file",
		"café.png":               "caf_.png",
		"a..b.pdf":               "a.b.pdf",
	}
	for input, want := range cases {
		assert.Equal(t, want, SanitizeFileName(input), input)
	}
}

func TestObjectNameIsUnique(t *testing.T) {
	a := ObjectName("demo.mp4")
	b := ObjectName("demo.mp4")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-demo.mp4"))
	require.NoError(t, ValidateName(a))
}

func TestValidateName(t *testing.T) {
	for _, bad := range []string{"", "..", "a/b", `a\b`, "..secret"} {
		assert.ErrorIs(t, ValidateName(bad), ErrInvalidName, bad)
	}
	assert.NoError(t, ValidateName("ok.pdf"))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "uploads", filepath.Base(store.Root()))

	location, err := store.Save(ctx, "notes.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/notes.txt", NormalizePath(location))

	rc, info, err := store.Open(ctx, "notes.txt")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int64(5), info.Size)
	assert.Contains(t, info.ContentType, "text/plain")

	require.NoError(t, store.Remove(ctx, "notes.txt"))
	_, _, err = store.Open(ctx, "notes.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}
