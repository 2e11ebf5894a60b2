package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync/atomic"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pgstay/api/internal/business/listing"
)

// MaxFileSize caps a single upload.
const MaxFileSize = 10 << 20

var (
	// ErrTooLarge is returned for files over MaxFileSize.
	ErrTooLarge = errors.New("file exceeds upload limit")
	// ErrUnsupportedType is returned for content other than images (and PDF for documents).
	ErrUnsupportedType = errors.New("unsupported file type")
)

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// ObjectStore opens a writer for a new object. The gcs adapter below wraps a
// *storage.BucketHandle; tests supply an in-memory fake.
type ObjectStore interface {
	NewWriter(ctx context.Context, object, contentType string) io.WriteCloser
	URL(object string) string
}

// Host uploads listing media and returns permanent URLs.
type Host struct {
	store ObjectStore
	mock  bool
	seq   atomic.Int64
}

// Config defines settings for the media host.
type Config struct {
	Mock bool
}

// New creates a Host. store may be nil in mock mode.
func New(store ObjectStore, cfg Config) *Host {
	return &Host{store: store, mock: cfg.Mock}
}

// NewBucketStore adapts a Cloud Storage bucket.
func NewBucketStore(client *storage.Client, bucket string) ObjectStore {
	return gcsStore{bucket: client.Bucket(bucket), name: bucket}
}

// Upload stores f under folder and returns its public URL. The content type is
// sniffed from the file itself; the client-declared type is ignored.
func (h *Host) Upload(ctx context.Context, folder string, f listing.File) (string, error) {
	if f.Size > MaxFileSize {
		return "", fmt.Errorf("%s: %w", f.Name, ErrTooLarge)
	}

	br := bufio.NewReader(f.Body)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok || (f.Kind == listing.FilePhoto && !strings.HasPrefix(contentType, "image/")) {
		return "", fmt.Errorf("%s (%s): %w", f.Name, contentType, ErrUnsupportedType)
	}

	if h.mock {
		return fmt.Sprintf("/placeholder.svg?height=150&width=200&query=room photo %d", h.seq.Add(1)), nil
	}
	if h.store == nil {
		return "", errors.New("media host not configured")
	}

	// Cancelling the writer's context before Close aborts the upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	object := path.Join(folder, uuid.NewString()+ext)
	w := h.store.NewWriter(ctx, object, contentType)
	n, err := io.Copy(w, io.LimitReader(br, MaxFileSize+1))
	if err == nil && n > MaxFileSize {
		err = ErrTooLarge
	}
	if err != nil {
		cancel()
		w.Close()
		return "", fmt.Errorf("upload %s: %w", f.Name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", f.Name, err)
	}
	return h.store.URL(object), nil
}

type gcsStore struct {
	bucket *storage.BucketHandle
	name   string
}

func (s gcsStore) NewWriter(ctx context.Context, object, contentType string) io.WriteCloser {
	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	return w
}

func (s gcsStore) URL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, object)
}
