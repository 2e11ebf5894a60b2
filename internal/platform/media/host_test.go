package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pgstay/api/internal/business/listing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memObject struct {
	contentType string
	buf         bytes.Buffer
	closed      bool
	ctx         context.Context
}

type memStore struct {
	objects map[string]*memObject
}

func newMemStore() *memStore { return &memStore{objects: map[string]*memObject{}} }

func (s *memStore) NewWriter(ctx context.Context, object, contentType string) io.WriteCloser {
	o := &memObject{contentType: contentType, ctx: ctx}
	s.objects[object] = o
	return &memWriter{o}
}

func (s *memStore) URL(object string) string { return "https://cdn.test/" + object }

type memWriter struct{ o *memObject }

func (w *memWriter) Write(p []byte) (int, error) { return w.o.buf.Write(p) }

func (w *memWriter) Close() error {
	w.o.closed = true
	return w.o.ctx.Err()
}

func TestUploadStoresSniffedImage(t *testing.T) {
	store := newMemStore()
	h := New(store, Config{})

	body := append(append([]byte{}, pngHeader...), []byte("pixels")...)
	url, err := h.Upload(context.Background(), "listings/o1/photos", listing.File{
		Name: "room.jpg", Kind: listing.FilePhoto, Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.test/listings/o1/photos/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	if len(store.objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(store.objects))
	}
	for _, o := range store.objects {
		if o.contentType != "image/png" {
			t.Fatalf("content type = %q", o.contentType)
		}
		if !bytes.Equal(o.buf.Bytes(), body) {
			t.Fatalf("stored body differs from upload")
		}
	}
}

func TestUploadRejectsDocumentAsPhoto(t *testing.T) {
	h := New(newMemStore(), Config{})
	_, err := h.Upload(context.Background(), "x", listing.File{
		Name: "bill.pdf", Kind: listing.FilePhoto, Body: strings.NewReader("%PDF-1.7\n..."),
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	url, err := h.Upload(context.Background(), "x", listing.File{
		Name: "bill.pdf", Kind: listing.FileDocument, Body: strings.NewReader("%PDF-1.7\n..."),
	})
	if err != nil || !strings.HasSuffix(url, ".pdf") {
		t.Fatalf("pdf proof: url=%q err=%v", url, err)
	}
}

func TestUploadRejectsPlainText(t *testing.T) {
	h := New(newMemStore(), Config{})
	_, err := h.Upload(context.Background(), "x", listing.File{
		Name: "notes.png", Kind: listing.FileDocument, Body: strings.NewReader("just some text"),
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUploadTooLarge(t *testing.T) {
	store := newMemStore()
	h := New(store, Config{})

	_, err := h.Upload(context.Background(), "x", listing.File{
		Name: "big.png", Kind: listing.FilePhoto, Size: MaxFileSize + 1, Body: bytes.NewReader(pngHeader),
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("declared size: expected ErrTooLarge, got %v", err)
	}

	// Undeclared size is enforced while streaming.
	body := io.MultiReader(bytes.NewReader(pngHeader), io.LimitReader(zeros{}, MaxFileSize))
	_, err = h.Upload(context.Background(), "x", listing.File{Name: "big.png", Kind: listing.FilePhoto, Body: body})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("streamed size: expected ErrTooLarge, got %v", err)
	}
	for _, o := range store.objects {
		if o.ctx.Err() == nil {
			t.Fatalf("oversized upload was not cancelled")
		}
	}
}

func TestUploadMock(t *testing.T) {
	h := New(nil, Config{Mock: true})
	for i, want := range []string{
		"/placeholder.svg?height=150&width=200&query=room photo 1",
		"/placeholder.svg?height=150&width=200&query=room photo 2",
	} {
		got, err := h.Upload(context.Background(), "x", listing.File{
			Name: "p.png", Kind: listing.FilePhoto, Body: bytes.NewReader(pngHeader),
		})
		if err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("upload %d = %q, want %q", i, got, want)
		}
	}
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
