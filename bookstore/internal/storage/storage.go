package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/bookstore/bookstore/internal/errs"
)

const (
	// URLPrefix is where stored images are served from.
	URLPrefix = "/images/books/"
	imagesDir = "images/books"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
}

// ImageStore keeps book covers on the local filesystem under root/images/books.
type ImageStore struct {
	dir     string
	maxSize int64
	log     *zap.Logger
}

func NewImageStore(root string, maxSize int64, log *zap.Logger) (*ImageStore, error) {
	dir := filepath.Join(root, filepath.FromSlash(imagesDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create images dir")
	}
	return &ImageStore{dir: dir, maxSize: maxSize, log: log.Named("storage")}, nil
}

func (s *ImageStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", errs.FileProcessing("invalid file type, allowed: .jpg, .jpeg, .png, .gif")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	if s.maxSize > 0 {
		content = io.LimitReader(content, s.maxSize+1)
	}
	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	switch {
	case err != nil:
		s.removePath(full)
		return "", errors.Wrap(err, "write image file")
	case n == 0:
		s.removePath(full)
		return "", errs.FileProcessing("file is empty")
	case s.maxSize > 0 && n > s.maxSize:
		s.removePath(full)
		return "", errs.FileProcessing(fmt.Sprintf("file is larger than %d bytes", s.maxSize))
	}
	s.log.Debug("image saved", zap.String("name", name), zap.Int64("size", n))
	return URLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Unknown or foreign urls are ignored.
func (s *ImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || name != strings.TrimPrefix(url, URLPrefix) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *ImageStore) removePath(p string) {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("remove partial image", zap.String("path", p), zap.Error(err))
	}
}
