package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms/formtest"
)

func TestValidator_ValidateFile(t *testing.T) {
	tempDir := t.TempDir()

	write := func(name string, data []byte) string {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
		return path
	}

	valid := write("form.pdf", formtest.Template(formtest.Field{Name: "a"}))
	empty := write("empty.pdf", nil)
	text := write("notes.txt", []byte("hello"))
	garbage := write("garbage.pdf", []byte("definitely not a pdf"))
	large := write("large.pdf", make([]byte, 4096))
	truncated := write("truncated.pdf", formtest.Truncated())

	validator := NewValidator(2048)

	tests := []struct {
		name        string
		path        string
		expectValid bool
	}{
		{name: "valid form", path: valid, expectValid: true},
		{name: "empty path", path: "", expectValid: false},
		{name: "non-existent file", path: filepath.Join(tempDir, "missing.pdf"), expectValid: false},
		{name: "directory", path: tempDir, expectValid: false},
		{name: "empty file", path: empty, expectValid: false},
		{name: "wrong extension", path: text, expectValid: false},
		{name: "not a pdf", path: garbage, expectValid: false},
		{name: "too large", path: large, expectValid: false},
		{name: "startxref past end of file", path: truncated, expectValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.ValidateFile(tt.path)

			assert.Equal(t, tt.path, result.Path)
			assert.Equal(t, tt.expectValid, result.Valid, result.Message)
			if !tt.expectValid {
				assert.NotEmpty(t, result.Message, "expected validation message for invalid file")
			}
		})
	}
}

func TestValidator_TruncatedFileReportsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.pdf")
	if err := os.WriteFile(path, formtest.Truncated(), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := NewValidator(1024).ValidateFile(path)
	assert.False(t, result.Valid)
	assert.True(t, strings.HasPrefix(result.Message, "invalid PDF file: "), result.Message)
	assert.Zero(t, result.Pages)
}
