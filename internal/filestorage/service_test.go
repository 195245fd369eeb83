package filestorage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"krishipredict_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func setupFileStorageService(t *testing.T) *FileStorageService {
	t.Helper()
	fsService, err := NewFileStorageService(&config.Config{ImageStoragePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	return fsService
}

// newTestFileHeader builds a FileHeader the same way gin parses a multipart upload.
func newTestFileHeader(t *testing.T, filename, content, contentType string) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	require.NotEmpty(t, form.File["image"])
	return form.File["image"][0]
}

func TestNewFileStorageService_RequiresPath(t *testing.T) {
	_, err := NewFileStorageService(&config.Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestSaveImage_UsesSniffedType(t *testing.T) {
	fs := setupFileStorageService(t)

	// Claims to be a jpeg with a .jpg name; the content is a png.
	fh := newTestFileHeader(t, "crop.jpg", pngHeader+"rest-of-image", "image/jpeg")
	rel, err := fs.SaveImage(fh, "listings")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rel, "listings/"))
	assert.Equal(t, ".png", filepath.Ext(rel))

	saved, err := os.ReadFile(filepath.Join(fs.Root(), rel))
	require.NoError(t, err)
	assert.Equal(t, pngHeader+"rest-of-image", string(saved))
}

func TestSaveImage_RejectsNonImages(t *testing.T) {
	fs := setupFileStorageService(t)
	fh := newTestFileHeader(t, "notes.jpg", "just some text", "image/jpeg")

	_, err := fs.SaveImage(fh, "listings")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveImage_RejectsTraversal(t *testing.T) {
	fs := setupFileStorageService(t)
	fh := newTestFileHeader(t, "crop.png", pngHeader, "image/png")

	_, err := fs.SaveImage(fh, "../outside")
	assert.Error(t, err)
}

func TestSaveImage_RejectsOversized(t *testing.T) {
	fs := setupFileStorageService(t)
	fh := newTestFileHeader(t, "big.png", pngHeader+strings.Repeat("x", MaxImageBytes), "image/png")

	_, err := fs.SaveImage(fh, "listings")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDeleteFile(t *testing.T) {
	fs := setupFileStorageService(t)
	fh := newTestFileHeader(t, "crop.png", pngHeader, "image/png")
	rel, err := fs.SaveImage(fh, "listings")
	require.NoError(t, err)

	require.NoError(t, fs.DeleteFile(rel))
	_, err = os.Stat(filepath.Join(fs.Root(), rel))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, fs.DeleteFile(rel), "missing files are ignored")
	assert.Error(t, fs.DeleteFile("../../etc/passwd"))
	assert.Error(t, fs.DeleteFile(""))
}
