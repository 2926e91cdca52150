package pdf

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/security"
)

// Service extracts the template's fields and fills it with submitted answers
type Service struct {
	opts          Options
	validator     *Validator
	extractor     *forms.Extractor
	filler        *forms.Filler
	store         *OutputStore
	pathValidator *security.PathValidator
}

// NewService creates a new PDF form service. The output directory is created
// if it does not exist.
func NewService(opts Options) (*Service, error) {
	if opts.TemplatePath == "" {
		return nil, fmt.Errorf("template path cannot be empty")
	}
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maximum file size must be positive")
	}

	store, err := NewOutputStore(opts.OutputDirectory, opts.OutputFilename, opts.UniqueOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to create output store: %w", err)
	}

	pathValidator, err := security.NewPathValidator(opts.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	fillOpts := opts.Fill
	fillOpts.Debug = fillOpts.Debug || opts.Debug

	return &Service{
		opts:          opts,
		validator:     NewValidator(opts.MaxFileSize),
		extractor:     forms.NewExtractor(opts.Debug),
		filler:        forms.NewFiller(fillOpts),
		store:         store,
		pathValidator: pathValidator,
	}, nil
}

// GetFields lists the template's fields; a template without fields yields an
// empty list.
func (s *Service) GetFields() ([]forms.FieldDescriptor, error) {
	template, err := s.readTemplate()
	if err != nil {
		return nil, err
	}
	return s.extractor.ExtractFields(template)
}

// GetFieldsStrict lists the template's fields and fails with NoFormFields when
// there are none.
func (s *Service) GetFieldsStrict() ([]forms.FieldDescriptor, error) {
	template, err := s.readTemplate()
	if err != nil {
		return nil, err
	}
	return s.extractor.ExtractFieldsStrict(template)
}

// SubmitAnswers fills the template with req.Answers and stores the result
func (s *Service) SubmitAnswers(req SubmitAnswersRequest) (*SubmitAnswersResult, error) {
	if req.Answers == nil {
		return nil, pdferrors.New(pdferrors.ErrorTypeMissingAnswers, "Missing 'answers' in request")
	}

	template, err := s.readTemplate()
	if err != nil {
		return nil, err
	}

	name := s.store.NextName()
	path, err := s.store.Write(name, func(w io.Writer) error {
		return s.filler.FillTo(w, template, req.Answers)
	})
	if err != nil {
		if pdferrors.TypeOf(err) != pdferrors.ErrorTypeUnknown {
			return nil, err
		}
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "cannot write output", err).WithFile(name)
	}

	if s.opts.Debug {
		log.Printf("Filled %d answers into %s", len(req.Answers), path)
	}

	return &SubmitAnswersResult{
		Status:      "success",
		Message:     "PDF filled and saved",
		OutputFile:  name,
		DownloadURL: "/download/" + name,
	}, nil
}

// OpenDownload opens a file of the output directory for reading. The caller
// closes it.
func (s *Service) OpenDownload(name string) (*os.File, os.FileInfo, error) {
	path, err := s.pathValidator.ResolveFile(name)
	if err != nil {
		return nil, nil, pdferrors.Wrap(pdferrors.ErrorTypeNotFound, "file not found", err).WithFile(name)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, pdferrors.New(pdferrors.ErrorTypeNotFound, "file not found").WithFile(name)
	}
	if err != nil {
		return nil, nil, pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "cannot open file", err).WithFile(name)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "cannot stat file", err).WithFile(name)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, pdferrors.New(pdferrors.ErrorTypeNotFound, "file not found").WithFile(name)
	}

	return f, info, nil
}

// ValidateTemplate checks the configured template with the validator
func (s *Service) ValidateTemplate() *TemplateValidationResult {
	return s.validator.ValidateFile(s.opts.TemplatePath)
}

// TemplatePath returns the configured template path
func (s *Service) TemplatePath() string {
	return s.opts.TemplatePath
}

// OutputDirectory returns the directory filled PDFs are written to
func (s *Service) OutputDirectory() string {
	return s.store.Directory()
}

// readTemplate loads the template, enforcing the size limit
func (s *Service) readTemplate() ([]byte, error) {
	path := s.opts.TemplatePath

	info, err := os.Stat(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "cannot read template", err).WithFile(filepath.Base(path))
	}
	if info.Size() > s.opts.MaxFileSize {
		return nil, pdferrors.New(pdferrors.ErrorTypeIOFailure,
			fmt.Sprintf("template too large: %d bytes (max: %d bytes)", info.Size(), s.opts.MaxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "cannot read template", err).WithFile(filepath.Base(path))
	}
	return data, nil
}
