// File: internal/filestorage/service.go
package filestorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"krishipredict_backend/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImageBytes is the largest accepted upload.
const MaxImageBytes = 5 << 20

var (
	// ErrTooLarge is returned for uploads above MaxImageBytes.
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
	// ErrUnsupportedType is returned when the content is not a supported image.
	ErrUnsupportedType = errors.New("unsupported image type")
)

// Extensions by sniffed content type.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStorageService stores uploaded crop photos on local disk.
type FileStorageService struct {
	storagePath string
	logger      *zap.Logger
}

// NewFileStorageService creates the storage directory if needed.
func NewFileStorageService(cfg *config.Config, logger *zap.Logger) (*FileStorageService, error) {
	storagePath := cfg.ImageStoragePath
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	return &FileStorageService{storagePath: storagePath, logger: logger.Named("FileStorage")}, nil
}

// Root is the directory files are stored under.
func (s *FileStorageService) Root() string { return s.storagePath }

// SaveImage stores an uploaded image under subDir with a generated name. The
// type is taken from the file content, not from the client's header or name.
// Returns the path relative to the storage root, e.g. "listings/<uuid>.jpg".
func (s *FileStorageService) SaveImage(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	if fileHeader.Size > MaxImageBytes {
		return "", ErrTooLarge
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", ErrUnsupportedType
	}

	cleanSubDir := filepath.Clean(subDir)
	if filepath.IsAbs(cleanSubDir) || strings.HasPrefix(cleanSubDir, "..") {
		return "", fmt.Errorf("invalid subDir path")
	}
	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	uniqueFilename := uuid.New().String() + ext
	destinationPath := filepath.Join(destinationDir, uniqueFilename)
	dst, err := os.Create(destinationPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head[:n]), src), MaxImageBytes+1))
	if err == nil && written > MaxImageBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(destinationPath)
		s.logger.Warn("Discarded uploaded file", zap.String("path", destinationPath), zap.Error(err))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Info("File saved", zap.String("path", destinationPath), zap.Int64("bytes", written))
	return filepath.ToSlash(filepath.Join(cleanSubDir, uniqueFilename)), nil
}

// DeleteFile removes a file given its path relative to the storage root.
// Deleting a missing file is not an error.
func (s *FileStorageService) DeleteFile(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	cleanRelativePath := filepath.Clean(relativePath)
	if filepath.IsAbs(cleanRelativePath) || strings.Contains(cleanRelativePath, "..") {
		s.logger.Warn("Attempt to delete file with path traversal", zap.String("relativePath", relativePath))
		return fmt.Errorf("invalid file path for deletion")
	}

	fullPath := filepath.Join(s.storagePath, cleanRelativePath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}
