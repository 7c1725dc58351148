// ABOUTME: Tests for attachment validation, loading, and upload state tracking.
// ABOUTME: Verifies the size ceiling, type allow-list, and IsUploading invariant.

package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		mediaType string
		wantErr   string
	}{
		{"report.pdf", 1024, "application/pdf", ""},
		{"notes.txt", 512, "text/plain", ""},
		{"photo.png", 2 * 1024 * 1024, "image/png", ""},
		{"huge.pdf", 11 * 1024 * 1024, "application/pdf", "File size must be less than 10MB"},
		{"at-limit.csv", MaxFileSize, "text/csv", ""},
		{"over-limit.csv", MaxFileSize + 1, "text/csv", "File size must be less than 10MB"},
		{"binary.exe", 1024, "application/octet-stream", "Please select a valid file type (PDF, DOC, DOCX, TXT, CSV, XLSX, JSON, ICS, PNG, JPG)"},
		{"page.html", 1024, "text/html", "Please select a valid file type (PDF, DOC, DOCX, TXT, CSV, XLSX, JSON, ICS, PNG, JPG)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.name, tt.size, tt.mediaType)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", MediaTypeFor("Quarterly Report.PDF"))
	assert.Equal(t, "text/calendar", MediaTypeFor("meeting.ics"))
	assert.Equal(t, "", MediaTypeFor("archive.tar.gz"))
	assert.Equal(t, "", MediaTypeFor("noextension"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ok":true}`), 0o644))

	att, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data.json", att.Name)
	assert.Equal(t, "application/json", att.MediaType)
	assert.Equal(t, int64(11), att.Size)
	assert.Equal(t, []byte(`{"ok":true}`), att.Data)
}

func TestLoadRejectsDisallowedType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo hi"), 0o644))

	_, err := Load(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}

func TestControllerSelectAndRemove(t *testing.T) {
	c := NewController()
	assert.Nil(t, c.Selected())

	ok := c.Select(&Attachment{Name: "a.pdf", Size: 100, MediaType: "application/pdf"})
	assert.True(t, ok)
	require.NotNil(t, c.Selected())
	assert.Equal(t, "a.pdf", c.Selected().Name)
	assert.Empty(t, c.State().Error)

	c.Remove()
	assert.Nil(t, c.Selected())
	assert.Equal(t, State{}, c.State())
}

func TestControllerSelectInvalidKeepsPrevious(t *testing.T) {
	c := NewController()
	require.True(t, c.Select(&Attachment{Name: "a.pdf", Size: 100, MediaType: "application/pdf"}))

	ok := c.Select(&Attachment{Name: "b.bin", Size: 100, MediaType: "application/octet-stream"})
	assert.False(t, ok)
	assert.Equal(t, "a.pdf", c.Selected().Name)
	assert.NotEmpty(t, c.State().Error)
}

func TestControllerProgressDrivesIsUploading(t *testing.T) {
	c := NewController()

	c.SetProgress(0)
	assert.False(t, c.State().IsUploading)

	c.SetProgress(25)
	assert.True(t, c.State().IsUploading)

	c.SetProgress(99)
	assert.True(t, c.State().IsUploading)

	c.SetProgress(100)
	assert.False(t, c.State().IsUploading)
}

func TestControllerErrorHandling(t *testing.T) {
	c := NewController()
	c.SetProgress(50)
	c.SetError("Failed to process file. Please try again.")

	st := c.State()
	assert.False(t, st.IsUploading)
	assert.Equal(t, "Failed to process file. Please try again.", st.Error)

	c.ClearError()
	assert.Empty(t, c.State().Error)
	assert.Equal(t, 50, c.State().Progress)
}
