package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeMinio is an in-memory bucket.
type fakeMinio struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	made    bool
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{objects: map[string][]byte{}}
}

func (f *fakeMinio) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.made && bucket == f.bucket, nil
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.bucket = bucket
	f.made = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return minio.UploadInfo{Key: key, Size: int64(len(b))}, nil
}

func (f *fakeMinio) GetObject(_ context.Context, _, key string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *fakeMinio) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeMinio) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (f *fakeMinio) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		f.mu.Lock()
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, opts.Prefix) {
				keys = append(keys, k)
			}
		}
		f.mu.Unlock()
		sort.Strings(keys)
		for _, k := range keys {
			ch <- minio.ObjectInfo{Key: k, Size: int64(len(f.objects[k])), LastModified: time.Now()}
		}
	}()
	return ch
}

func newTestStore(t *testing.T) (*Store, *fakeMinio) {
	t.Helper()
	fake := newFakeMinio()
	s, err := NewStoreWithAPI(context.Background(), fake, "uploads", "http://localhost:9000/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, fake
}

func TestStoreCreatesMissingBucket(t *testing.T) {
	_, fake := newTestStore(t)
	if !fake.made {
		t.Fatalf("expected bucket to be created")
	}
}

func TestStoreUploadDownloadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	info, err := s.Upload(ctx, "u1/pdf/a.pdf", strings.NewReader("%PDF-data"), 9, "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if info.Path != "u1/pdf/a.pdf" {
		t.Fatalf("path: %q", info.Path)
	}
	if info.URL != "http://localhost:9000/uploads/u1/pdf/a.pdf" {
		t.Fatalf("url: %q", info.URL)
	}

	rc, err := s.Download(ctx, "u1/pdf/a.pdf")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "%PDF-data" {
		t.Fatalf("content: %q", b)
	}
}

func TestStoreDownloadMissing(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Download(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreListByPrefix(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"u1/pdf/a.pdf", "u1/pdf/b.pdf", "u2/pdf/c.pdf"} {
		if _, err := s.Upload(ctx, key, strings.NewReader("x"), 1, "application/pdf"); err != nil {
			t.Fatalf("upload %s: %v", key, err)
		}
	}

	files, err := s.List(ctx, "u1/pdf/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, f := range files {
		if !strings.HasPrefix(f.Path, "u1/pdf/") {
			t.Fatalf("foreign file leaked: %q", f.Path)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Upload(ctx, "u1/pdf/a.pdf", strings.NewReader("x"), 1, "application/pdf"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := s.Delete(ctx, "u1/pdf/a.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := fake.objects["u1/pdf/a.pdf"]; ok {
		t.Fatalf("object survived delete")
	}
	if err := s.Delete(ctx, "u1/pdf/a.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestKeyFromURL(t *testing.T) {
	s, _ := newTestStore(t)

	if got := s.KeyFromURL("http://localhost:9000/uploads/u1/pdf/a.pdf"); got != "u1/pdf/a.pdf" {
		t.Fatalf("from url: %q", got)
	}
	if got := s.KeyFromURL("u1/pdf/a.pdf"); got != "u1/pdf/a.pdf" {
		t.Fatalf("bare key: %q", got)
	}
}
