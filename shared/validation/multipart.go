package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// multipart framing and small form fields on top of the file itself
const formOverhead = 1 << 20

type UploadedFile struct {
	Name string
	Data []byte
}

// ReadSingleFile parses a multipart request of at most maxSize file bytes and
// returns the content of the part named field.
//
// MaxBytesReader closes the connection once the limit is hit, clients sending
// oversized bodies may see a reset instead of the error response.
func ReadSingleFile(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (*UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)
	if err := r.ParseMultipartForm(maxSize + formOverhead); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("%w: request is not multipart", ErrMissingFile)
		}
		return nil, fmt.Errorf("%w: failed to parse multipart form: %v", ErrPayloadTooLarge, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: form field %q", ErrMissingFile, field)
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, fmt.Errorf("%w: file exceeds %.0f MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: file %q is empty", ErrMissingFile, header.Filename)
	}

	return &UploadedFile{Name: filepath.Base(header.Filename), Data: buf.Bytes()}, nil
}

// ContentType guesses the media type from the file extension, then from the
// first bytes of the content.
func ContentType(name string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(data)
}

// FormatSizeMB converts bytes to megabytes for user-friendly error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
