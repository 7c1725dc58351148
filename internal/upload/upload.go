// ABOUTME: File attachment validation and loading for chat submissions.
// ABOUTME: Enforces the 10 MiB size ceiling and the fixed media type allow-list.

package upload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the attachment size ceiling in bytes.
const MaxFileSize = 10 * 1024 * 1024

// allowedTypes is the fixed media type allow-list for attachments.
var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":               true,
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/json": true,
	"text/calendar":    true,
	"image/png":        true,
	"image/jpeg":       true,
	"image/jpg":        true,
}

// extensionTypes maps file extensions to their declared media type.
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".json": "application/json",
	".ics":  "text/calendar",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".jpeg": "image/jpeg",
}

// ValidationError reports why a candidate attachment was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Attachment holds a loaded file ready for submission.
// Data carries the raw bytes; only the metadata survives into the transcript.
type Attachment struct {
	Name      string
	Size      int64
	MediaType string
	Data      []byte
}

// Validate checks a candidate attachment against the size and type policy.
// Returns nil when the file is acceptable, a *ValidationError otherwise.
func Validate(name string, size int64, mediaType string) error {
	if size > MaxFileSize {
		slog.Warn("file rejected", "name", name, "size", size, "reason", "too large")
		return &ValidationError{Reason: "File size must be less than 10MB"}
	}
	if !allowedTypes[mediaType] {
		slog.Warn("file rejected", "name", name, "type", mediaType, "reason", "type not allowed")
		return &ValidationError{Reason: "Please select a valid file type (PDF, DOC, DOCX, TXT, CSV, XLSX, JSON, ICS, PNG, JPG)"}
	}
	slog.Debug("file validated", "name", name, "size", size, "type", mediaType)
	return nil
}

// MediaTypeFor returns the declared media type for a filename based on its
// extension, or the empty string when the extension is unknown.
func MediaTypeFor(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}

// Load reads a file from disk, infers its media type from the extension,
// and validates it. The whole file is buffered; the size cap bounds memory.
func Load(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	mediaType := MediaTypeFor(name)
	if err := Validate(name, info.Size(), mediaType); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Attachment{
		Name:      name,
		Size:      info.Size(),
		MediaType: mediaType,
		Data:      data,
	}, nil
}
