package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
)

func multipartRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bootcamps/abc/photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSavePhoto(t *testing.T) {
	dir := t.TempDir()
	store := &Store{Dir: dir, MaxBytes: 1 << 20}

	req := multipartRequest(t, "file", "school.jpg", "image/jpeg", []byte("jpegdata"))
	name, err := store.SavePhoto(req, "bootcamp-1")
	if err != nil {
		t.Fatalf("SavePhoto error: %v", err)
	}
	if name != "photo_bootcamp-1.jpg" {
		t.Fatalf("unexpected filename: %s", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Fatalf("stored content mismatch: %s", data)
	}
}

func TestSavePhotoRejectsNonImage(t *testing.T) {
	store := &Store{Dir: t.TempDir(), MaxBytes: 1 << 20}

	req := multipartRequest(t, "file", "notes.txt", "text/plain", []byte("hello"))
	if _, err := store.SavePhoto(req, "bootcamp-1"); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestSavePhotoRejectsOversized(t *testing.T) {
	store := &Store{Dir: t.TempDir(), MaxBytes: 4}

	req := multipartRequest(t, "file", "big.png", "image/png", []byte("way too large"))
	if _, err := store.SavePhoto(req, "bootcamp-1"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestSavePhotoRequiresFileField(t *testing.T) {
	store := &Store{Dir: t.TempDir(), MaxBytes: 1 << 20}

	req := multipartRequest(t, "photo", "school.jpg", "image/jpeg", []byte("jpegdata"))
	if _, err := store.SavePhoto(req, "bootcamp-1"); !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}
