package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxImageSize = 5 * 1024 * 1024

var (
	ErrEmptyImage       = errors.New("EMPTY_IMAGE")
	ErrImageTooLarge    = errors.New("IMAGE_TOO_LARGE")
	ErrUnsupportedImage = errors.New("UNSUPPORTED_IMAGE")
	ErrInvalidRef       = errors.New("INVALID_IMAGE_REF")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var refPattern = regexp.MustCompile(`^[0-9a-f-]{36}\.(jpg|png|webp|gif)$`)

// Store is the object storage contract the engine needs. Content is opaque.
type Store interface {
	Store(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// LocalStore keeps images in a directory served under baseURL.
type LocalStore struct {
	logger  *zap.SugaredLogger
	dir     string
	baseURL string
}

func NewLocalStore(logger *zap.SugaredLogger, dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", dir, err)
	}
	return &LocalStore{
		logger:  logger,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Store(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}

	ext, ok := allowedTypes[http.DetectContentType(data)]
	if !ok {
		s.logger.Warnw("rejected image upload", "contentType", http.DetectContentType(data))
		return "", ErrUnsupportedImage
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + ext
	// write to a temp name first so a half-written file is never referenced
	tmp := filepath.Join(s.dir, "."+ref+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, ref)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit image: %w", err)
	}

	s.logger.Debugw("image stored", "ref", ref, "bytes", len(data))
	return ref, nil
}

// Delete is idempotent: a missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if !refPattern.MatchString(ref) {
		return ErrInvalidRef
	}

	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image %s: %w", ref, err)
	}

	s.logger.Debugw("image deleted", "ref", ref)
	return nil
}

func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/" + ref
}

func (s *LocalStore) Dir() string {
	return s.dir
}
