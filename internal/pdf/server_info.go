package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ChandanaAtBessemer/Backend/internal/descriptions"
)

// maxListedOutputs caps the output files reported by ServerInfo
const maxListedOutputs = 100

// ToolInfo describes one tool exposed by the server
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// FileInfo describes a filled PDF in the output directory
type FileInfo struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ServerInfoResult summarises the server's configuration and state
type ServerInfoResult struct {
	ServerName      string                    `json:"server_name"`
	Version         string                    `json:"version"`
	Template        *TemplateValidationResult `json:"template"`
	OutputDirectory string                    `json:"output_directory"`
	OutputFiles     []FileInfo                `json:"output_files"`
	Truncated       bool                      `json:"truncated,omitempty"`
	MaxFileSize     int64                     `json:"max_file_size"`
	AvailableTools  []ToolInfo                `json:"available_tools"`
	UsageGuidance   string                    `json:"usage_guidance"`
}

// ServerInfo reports the template state, the stored outputs and the tools
func (s *Service) ServerInfo(serverName, version string) (*ServerInfoResult, error) {
	files, truncated, err := s.listOutputs()
	if err != nil {
		return nil, err
	}

	return &ServerInfoResult{
		ServerName:      serverName,
		Version:         version,
		Template:        s.ValidateTemplate(),
		OutputDirectory: s.OutputDirectory(),
		OutputFiles:     files,
		Truncated:       truncated,
		MaxFileSize:     s.opts.MaxFileSize,
		AvailableTools:  availableTools(),
		UsageGuidance:   s.usageGuidance(),
	}, nil
}

// listOutputs returns the PDFs of the output directory, newest first
func (s *Service) listOutputs() ([]FileInfo, bool, error) {
	entries, err := os.ReadDir(s.OutputDirectory())
	if err != nil {
		return nil, false, fmt.Errorf("failed to read output directory: %w", err)
	}

	type entry struct {
		info    FileInfo
		modTime time.Time
	}

	var found []entry
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		found = append(found, entry{
			info: FileInfo{
				Name:         e.Name(),
				Size:         info.Size(),
				ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
			},
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})

	truncated := len(found) > maxListedOutputs
	if truncated {
		found = found[:maxListedOutputs]
	}

	files := make([]FileInfo, 0, len(found))
	for _, f := range found {
		files = append(files, f.info)
	}
	return files, truncated, nil
}

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "pdf_get_fields",
			Description: descriptions.GetToolDescription("pdf_get_fields"),
			Usage:       "List the template's fields before asking for answers.",
			Parameters:  "none",
		},
		{
			Name:        "pdf_submit_answers",
			Description: descriptions.GetToolDescription("pdf_submit_answers"),
			Usage:       "Fill the template and save the filled copy to the output directory.",
			Parameters:  "answers (required): object mapping field names to values",
		},
		{
			Name:        "pdf_validate_template",
			Description: descriptions.GetToolDescription("pdf_validate_template"),
			Usage:       "Check that the configured template is a readable PDF.",
			Parameters:  "none",
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Usage:       "Show configuration, stored outputs and available tools.",
			Parameters:  "none",
		},
	}
}

func (s *Service) usageGuidance() string {
	maxFileSizeMB := s.opts.MaxFileSize / (1024 * 1024)

	return fmt.Sprintf(`PDF Form Server Usage Guide:

1. DISCOVER THE FORM:
   - Use 'pdf_get_fields' to list the template's fields and their types

2. SUBMIT ANSWERS:
   - Use 'pdf_submit_answers' with an "answers" object keyed by "pdf_field"
   - Boolean fields take true/false; other fields take text

3. COLLECT THE RESULT:
   - The result names the output file; over HTTP it is served at /download/<file>

IMPORTANT NOTES:
- The template is fixed by configuration: %s
- The template may be at most %dMB`, filepath.Base(s.opts.TemplatePath), maxFileSizeMB)
}
