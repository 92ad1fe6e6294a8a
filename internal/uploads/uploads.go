// Package uploads stores bootcamp photos submitted as multipart form data.
package uploads

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissingFile = errors.New("please upload a file")
	ErrNotImage    = errors.New("please upload an image file")
	ErrTooLarge    = errors.New("uploaded file is too large")
)

type Store struct {
	Dir      string
	MaxBytes int64
}

// SavePhoto validates and persists the "file" part of r for the given owner
// id and returns the stored filename.
func (s *Store) SavePhoto(r *http.Request, ownerID string) (string, error) {
	if err := r.ParseMultipartForm(s.MaxBytes); err != nil {
		return "", ErrMissingFile
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", ErrMissingFile
	}
	defer file.Close()

	if err := s.check(header); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := "photo_" + ownerID + ext

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.MaxBytes)); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) check(header *multipart.FileHeader) error {
	if header.Size > s.MaxBytes {
		return ErrTooLarge
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	return nil
}
