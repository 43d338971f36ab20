package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"

	"workshops/internal/ids"
	"workshops/internal/media/sniffer"
	"workshops/internal/media/svg"
	"workshops/internal/models"
	"workshops/internal/repository"
	"workshops/internal/storage"
)

// FileUpload is one uploaded form file, detached from the multipart machinery.
type FileUpload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

func FromMultipart(h *multipart.FileHeader) FileUpload {
	return FileUpload{
		Name: h.Filename,
		Size: h.Size,
		Open: func() (io.ReadCloser, error) { return h.Open() },
	}
}

func FromMultipartList(headers []*multipart.FileHeader) []FileUpload {
	if len(headers) == 0 {
		return nil
	}
	out := make([]FileUpload, 0, len(headers))
	for _, h := range headers {
		out = append(out, FromMultipart(h))
	}
	return out
}

// StoredUpload describes a file after it has been written to the file store.
type StoredUpload struct {
	Name     string
	Path     string
	MimeType string
}

type UploadService struct {
	store    storage.FileStore
	files    StoredFileStore
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

func NewUploadService(store storage.FileStore, files StoredFileStore, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{
		store:    store,
		files:    files,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

// Store writes any file type and returns its public /uploads path.
func (s *UploadService) Store(ctx context.Context, f FileUpload) (StoredUpload, error) {
	if err := s.checkSize(f); err != nil {
		return StoredUpload{}, err
	}
	rc, err := f.Open()
	if err != nil {
		return StoredUpload{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	kind, head, err := sniffer.Detect(rc)
	if err != nil {
		return StoredUpload{}, fmt.Errorf("read upload: %w", err)
	}
	if kind.Type == sniffer.TypeSVG {
		rest, err := io.ReadAll(rc)
		if err != nil {
			return StoredUpload{}, fmt.Errorf("read upload: %w", err)
		}
		return s.storeSVG(ctx, f.Name, append(head, rest...))
	}
	return s.save(ctx, f.Name, io.MultiReader(bytes.NewReader(head), rc), f.Size, kind.MIME)
}

// StoreImage only accepts the image formats the sniffer recognises.
func (s *UploadService) StoreImage(ctx context.Context, f FileUpload) (StoredUpload, error) {
	data, err := s.readAll(f)
	if err != nil {
		return StoredUpload{}, err
	}
	kind := sniffer.Classify(data)
	if !kind.IsImage() {
		return StoredUpload{}, invalid("%s is not a supported image", f.Name)
	}
	if kind.Type == sniffer.TypeSVG {
		return s.storeSVG(ctx, f.Name, data)
	}
	return s.save(ctx, f.Name, bytes.NewReader(data), int64(len(data)), kind.MIME)
}

func (s *UploadService) storeSVG(ctx context.Context, name string, data []byte) (StoredUpload, error) {
	clean, err := svg.Sanitize(data)
	if err != nil {
		return StoredUpload{}, invalid("%s is not a valid svg", name)
	}
	return s.save(ctx, name, bytes.NewReader(clean), int64(len(clean)), "image/svg+xml")
}

func (s *UploadService) save(ctx context.Context, original string, r io.Reader, size int64, mime string) (StoredUpload, error) {
	location, err := s.store.Save(ctx, storage.ObjectName(original), r, size, mime)
	if err != nil {
		return StoredUpload{}, fmt.Errorf("store %s: %w", original, err)
	}
	return StoredUpload{
		Name:     original,
		Path:     storage.NormalizePath(location),
		MimeType: mime,
	}, nil
}

// Open streams a previously stored upload by its file name.
func (s *UploadService) Open(ctx context.Context, name string) (io.ReadCloser, storage.FileInfo, error) {
	rc, info, err := s.store.Open(ctx, name)
	if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidName) {
		return nil, storage.FileInfo{}, notFound("file")
	}
	return rc, info, err
}

// StoreBlob keeps the payload in the database instead of the file store.
func (s *UploadService) StoreBlob(ctx context.Context, f FileUpload) (models.StoredFile, error) {
	data, err := s.readAll(f)
	if err != nil {
		return models.StoredFile{}, err
	}
	file := models.StoredFile{
		ID:        ids.New(),
		Name:      storage.SanitizeFileName(f.Name),
		MimeType:  sniffer.Classify(data).MIME,
		Data:      data,
		CreatedAt: s.now().UTC(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		return models.StoredFile{}, err
	}
	return file, nil
}

func (s *UploadService) GetBlob(ctx context.Context, id string) (models.StoredFile, error) {
	file, err := s.files.GetByID(ctx, id)
	if errors.Is(err, repository.ErrStoredFileNotFound) {
		return models.StoredFile{}, notFound("file")
	}
	return file, err
}

func (s *UploadService) readAll(f FileUpload) ([]byte, error) {
	if err := s.checkSize(f); err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if s.maxBytes > 0 {
		r = io.LimitReader(rc, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, invalid("%s exceeds the upload limit", f.Name)
	}
	if len(data) == 0 {
		return nil, invalid("%s is empty", f.Name)
	}
	return data, nil
}

func (s *UploadService) checkSize(f FileUpload) error {
	if f.Open == nil {
		return invalid("missing file payload")
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return invalid("%s exceeds the upload limit", f.Name)
	}
	return nil
}
