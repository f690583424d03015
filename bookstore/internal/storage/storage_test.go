package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
	"github.com/Astemirdum/bookstore/bookstore/internal/storage"
)

func TestImageStore_Save(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	s, err := storage.NewImageStore(root, 16, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  string
		wantErr  string
	}{
		{name: "png", filename: "cover.png", content: "png-bytes"},
		{name: "upper jpeg", filename: "COVER.JPEG", content: "jpeg-bytes"},
		{name: "bad ext", filename: "cover.bmp", content: "bmp", wantErr: "invalid file type, allowed: .jpg, .jpeg, .png, .gif"},
		{name: "no ext", filename: "cover", content: "x", wantErr: "invalid file type, allowed: .jpg, .jpeg, .png, .gif"},
		{name: "empty", filename: "cover.gif", content: "", wantErr: "file is empty"},
		{name: "too large", filename: "cover.jpg", content: strings.Repeat("x", 17), wantErr: "file is larger than 16 bytes"},
	}
	for _, tt := range tests {
		url, err := s.Save(ctx, tt.filename, strings.NewReader(tt.content))
		if tt.wantErr != "" {
			require.True(t, errors.Is(err, errs.ErrFileProcessing), tt.name)
			require.EqualError(t, err, tt.wantErr, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		require.True(t, strings.HasPrefix(url, storage.URLPrefix), tt.name)
		require.Equal(t, strings.ToLower(filepath.Ext(tt.filename)), filepath.Ext(url), tt.name)

		data, err := os.ReadFile(filepath.Join(root, "images", "books", filepath.Base(url)))
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.content, string(data), tt.name)
	}

	entries, err := os.ReadDir(filepath.Join(root, "images", "books"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestImageStore_Remove(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	s, err := storage.NewImageStore(root, 0, zap.NewNop())
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "a.png", strings.NewReader("data"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(url))
	require.NoError(t, s.Remove(url))
	_, err = os.Stat(filepath.Join(root, "images", "books", filepath.Base(url)))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Remove("https://cdn.example.com/x.png"))
	require.NoError(t, s.Remove(storage.URLPrefix+"../../secret.png"))
}
