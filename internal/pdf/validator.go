package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that a template file is a readable PDF within the size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile validates filePath. Validation problems are reported in the
// result, not as an error.
func (v *Validator) ValidateFile(filePath string) *TemplateValidationResult {
	result := &TemplateValidationResult{
		Path:  filePath,
		Valid: false,
	}

	size, pages, err := v.validatePDFFile(filePath)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	result.Size = size
	result.Pages = pages
	return result
}

// validatePDFFile performs detailed validation on a PDF file. Panics from the
// PDF reader on malformed files are reported as invalid files.
func (v *Validator) validatePDFFile(filePath string) (size int64, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			size, pages = 0, 0
			err = fmt.Errorf("invalid PDF file: %v", r)
		}
	}()

	if filePath == "" {
		return 0, 0, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return 0, 0, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return 0, 0, err
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return fileInfo.Size(), r.NumPage(), nil
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
