package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestLocalDisk_SaveAndRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	disk := NewLocalDisk(root)

	rel, err := disk.SaveImage(FlightImages, "flight", fileHeader(t, "Plane.PNG", "image/png", []byte("png")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "uploads/flights/flight-"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	onDisk := filepath.Join(root, strings.TrimPrefix(rel, "uploads/"))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	disk.Remove(rel)
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NotPanics(t, func() { disk.Remove(rel) })
}

func TestLocalDisk_RejectsNonImages(t *testing.T) {
	disk := NewLocalDisk(t.TempDir())

	_, err := disk.SaveImage(ProfilePictures, "profilePicture", fileHeader(t, "notes.txt", "text/plain", []byte("hi")))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLocalDisk_RemoveStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	outside := filepath.Join(parent, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	disk := NewLocalDisk(filepath.Join(parent, "uploads"))
	disk.Remove("uploads/../keep.txt")

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
