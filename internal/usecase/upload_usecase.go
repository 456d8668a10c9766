package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"podium/internal/extractor"
	"podium/internal/infrastructure/storage"
)

var (
	ErrNotPDF        = errors.New("file is not a PDF")
	ErrFileNotFound  = errors.New("file not found")
	ErrStorageFailed = errors.New("storage backend unavailable")
)

// maxUploadBytes caps a single PDF at 20 MiB.
const maxUploadBytes = 20 << 20

// UploadOutcome reports the per-file result of a multi-file upload.
type UploadOutcome struct {
	Filename string            `json:"filename"`
	File     *storage.FileInfo `json:"file,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type UploadUsecase interface {
	Upload(ctx context.Context, userID, filename string, r io.Reader, size int64) (storage.FileInfo, error)
	UploadMany(ctx context.Context, userID string, files []NamedReader) ([]UploadOutcome, error)
	List(ctx context.Context, userID string) ([]storage.FileInfo, error)
	Delete(ctx context.Context, userID, key string) error
}

// NamedReader pairs one multipart file with its client-supplied name.
type NamedReader struct {
	Name string
	Open func() (io.ReadCloser, error)
	Size int64
}

type Upload struct {
	store *storage.Store
}

func NewUploadUsecase(store *storage.Store) *Upload {
	return &Upload{store: store}
}

// Upload validates that the payload really is a PDF before anything
// touches the bucket, then stores it under the owner's key prefix.
func (u *Upload) Upload(ctx context.Context, userID, filename string, r io.Reader, size int64) (storage.FileInfo, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return storage.FileInfo{}, ErrUnauthorized
	}
	if size <= 0 || size > maxUploadBytes {
		return storage.FileInfo{}, fmt.Errorf("%w: size %d out of range", ErrNotPDF, size)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return storage.FileInfo{}, fmt.Errorf("%w: file too large", ErrNotPDF)
	}
	if !extractor.IsPDF(data) {
		return storage.FileInfo{}, ErrNotPDF
	}

	key := objectKey(owner, filename)
	info, err := u.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/pdf")
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return info, nil
}

// UploadMany stores each file independently and reports per-file outcomes;
// one rejected file does not fail the batch.
func (u *Upload) UploadMany(ctx context.Context, userID string, files []NamedReader) ([]UploadOutcome, error) {
	if _, err := parseUserID(userID); err != nil {
		return nil, ErrUnauthorized
	}

	outcomes := make([]UploadOutcome, 0, len(files))
	for _, f := range files {
		outcome := UploadOutcome{Filename: f.Name}

		rc, err := f.Open()
		if err != nil {
			outcome.Error = "could not read file"
			outcomes = append(outcomes, outcome)
			continue
		}
		info, err := u.Upload(ctx, userID, f.Name, rc, f.Size)
		rc.Close()
		if err != nil {
			if errors.Is(err, ErrStorageFailed) {
				return nil, err
			}
			outcome.Error = err.Error()
		} else {
			outcome.File = &info
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (u *Upload) List(ctx context.Context, userID string) ([]storage.FileInfo, error) {
	owner, err := parseUserID(userID)
	if err != nil {
		return nil, ErrUnauthorized
	}

	files, err := u.store.List(ctx, ownerPrefix(owner))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return files, nil
}

// Delete removes one of the caller's files. A key outside the caller's
// prefix reports not-found, same as a missing one.
func (u *Upload) Delete(ctx context.Context, userID, key string) error {
	owner, err := parseUserID(userID)
	if err != nil {
		return ErrUnauthorized
	}

	key = u.store.KeyFromURL(strings.TrimSpace(key))
	if !strings.HasPrefix(key, ownerPrefix(owner)) {
		return ErrFileNotFound
	}

	if err := u.store.Delete(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}
	return nil
}

func ownerPrefix(owner uuid.UUID) string {
	return owner.String() + "/pdf/"
}

func objectKey(owner uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".pdf"
	}
	return ownerPrefix(owner) + uuid.NewString() + ext
}
