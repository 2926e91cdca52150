package pdf

import "github.com/ChandanaAtBessemer/Backend/internal/pdf/forms"

// Options configures a Service. It replaces process-wide template and output
// settings so several services can run side by side.
type Options struct {
	TemplatePath    string
	OutputDirectory string
	OutputFilename  string
	MaxFileSize     int64

	// UniqueOutput gives every fill its own file instead of overwriting
	// OutputFilename.
	UniqueOutput bool

	Fill  forms.FillOptions
	Debug bool
}

// Request Types

// SubmitAnswersRequest is the body of an answer submission
type SubmitAnswersRequest struct {
	Answers forms.Answers `json:"answers"`
}

// Response Types

// SubmitAnswersResult describes the filled PDF written for a submission
type SubmitAnswersResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	OutputFile  string `json:"output_file"`
	DownloadURL string `json:"download_url"`
}

// TemplateValidationResult represents the result of validating the template
type TemplateValidationResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Pages   int    `json:"pages,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
