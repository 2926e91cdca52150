package pdf

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms/formtest"
)

func writeTemplate(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "template.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestService(t *testing.T, template []byte, mutate func(*Options)) *Service {
	t.Helper()
	dir := t.TempDir()

	opts := Options{
		TemplatePath:    writeTemplate(t, dir, template),
		OutputDirectory: filepath.Join(dir, "output"),
		OutputFilename:  "filled_contract.pdf",
		MaxFileSize:     1024 * 1024,
	}
	if mutate != nil {
		mutate(&opts)
	}

	service, err := NewService(opts)
	require.NoError(t, err)
	return service
}

func contractTemplate() []byte {
	return formtest.Template(
		formtest.Field{Name: "FullName", Kind: formtest.Text},
		formtest.Field{Name: "Agree", Kind: formtest.Checkbox, States: []string{"Off", "Yes"}},
	)
}

func TestNewService(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		opts        Options
		expectError bool
	}{
		{
			name: "valid options",
			opts: Options{
				TemplatePath:    filepath.Join(dir, "t.pdf"),
				OutputDirectory: filepath.Join(dir, "out"),
				OutputFilename:  "filled.pdf",
				MaxFileSize:     1024,
			},
		},
		{
			name: "missing template",
			opts: Options{
				OutputDirectory: filepath.Join(dir, "out"),
				OutputFilename:  "filled.pdf",
				MaxFileSize:     1024,
			},
			expectError: true,
		},
		{
			name: "zero size limit",
			opts: Options{
				TemplatePath:    filepath.Join(dir, "t.pdf"),
				OutputDirectory: filepath.Join(dir, "out"),
				OutputFilename:  "filled.pdf",
			},
			expectError: true,
		},
		{
			name: "output filename with directory",
			opts: Options{
				TemplatePath:    filepath.Join(dir, "t.pdf"),
				OutputDirectory: filepath.Join(dir, "out"),
				OutputFilename:  "../filled.pdf",
				MaxFileSize:     1024,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewService(tt.opts)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.DirExists(t, service.OutputDirectory())
		})
	}
}

func TestService_GetFields(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)

	fields, err := service.GetFields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "FullName", fields[0].PDFField)
	assert.Equal(t, forms.FieldTypeText, fields[0].Type)
	assert.Equal(t, "Agree", fields[1].PDFField)
	assert.Equal(t, forms.FieldTypeBoolean, fields[1].Type)
}

func TestService_GetFieldsWithoutForm(t *testing.T) {
	service := newTestService(t, formtest.TemplateWithOptions(formtest.Options{NoAcroForm: true}), nil)

	fields, err := service.GetFields()
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = service.GetFieldsStrict()
	assert.True(t, errors.Is(err, pdferrors.ErrNoFormFields))
}

func TestService_MissingTemplate(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)
	require.NoError(t, os.Remove(service.TemplatePath()))

	_, err := service.GetFields()
	assert.True(t, errors.Is(err, pdferrors.ErrIOFailure))

	_, err = service.SubmitAnswers(SubmitAnswersRequest{Answers: forms.Answers{"FullName": "x"}})
	assert.True(t, errors.Is(err, pdferrors.ErrIOFailure))
}

func TestService_TemplateTooLarge(t *testing.T) {
	service := newTestService(t, contractTemplate(), func(o *Options) { o.MaxFileSize = 16 })

	_, err := service.GetFields()
	assert.True(t, errors.Is(err, pdferrors.ErrIOFailure))
}

func TestService_SubmitAnswers(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)

	result, err := service.SubmitAnswers(SubmitAnswersRequest{
		Answers: forms.Answers{"FullName": "Jane Doe", "Agree": true},
	})
	require.NoError(t, err)

	assert.Equal(t, &SubmitAnswersResult{
		Status:      "success",
		Message:     "PDF filled and saved",
		OutputFile:  "filled_contract.pdf",
		DownloadURL: "/download/filled_contract.pdf",
	}, result)

	f, _, err := service.OpenDownload(result.OutputFile)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)

	fields, err := forms.NewExtractor(false).ExtractFieldsStrict(data)
	require.NoError(t, err)
	assert.Len(t, fields, 2)
}

func TestService_SubmitAnswersMissing(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)

	_, err := service.SubmitAnswers(SubmitAnswersRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrMissingAnswers))
	assert.Equal(t, "Missing 'answers' in request", err.Error())
}

func TestService_SubmitAnswersMalformedTemplate(t *testing.T) {
	service := newTestService(t, []byte("not a pdf at all"), nil)

	_, err := service.SubmitAnswers(SubmitAnswersRequest{Answers: forms.Answers{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrParseFailure))

	entries, err := os.ReadDir(service.OutputDirectory())
	require.NoError(t, err)
	assert.Empty(t, entries, "failed fills must not leave files behind")
}

func TestService_UniqueOutput(t *testing.T) {
	service := newTestService(t, contractTemplate(), func(o *Options) { o.UniqueOutput = true })

	first, err := service.SubmitAnswers(SubmitAnswersRequest{Answers: forms.Answers{"FullName": "a"}})
	require.NoError(t, err)
	second, err := service.SubmitAnswers(SubmitAnswersRequest{Answers: forms.Answers{"FullName": "b"}})
	require.NoError(t, err)

	assert.NotEqual(t, first.OutputFile, second.OutputFile)
	assert.Regexp(t, `^filled_contract-[0-9a-f-]{36}\.pdf$`, first.OutputFile)
	assert.FileExists(t, filepath.Join(service.OutputDirectory(), first.OutputFile))
	assert.FileExists(t, filepath.Join(service.OutputDirectory(), second.OutputFile))
}

func TestService_ConcurrentSubmissions(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.SubmitAnswers(SubmitAnswersRequest{
				Answers: forms.Answers{"FullName": i, "Agree": i%2 == 0},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(service.OutputDirectory(), "filled_contract.pdf"))
	require.NoError(t, err)
	_, err = forms.NewExtractor(false).ExtractFieldsStrict(data)
	assert.NoError(t, err, "last writer must leave a complete PDF")
}

func TestService_OpenDownload(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)
	require.NoError(t, os.Mkdir(filepath.Join(service.OutputDirectory(), "sub"), 0o755))

	for _, name := range []string{"missing.pdf", "../template.pdf", "sub", ""} {
		_, _, err := service.OpenDownload(name)
		assert.True(t, errors.Is(err, pdferrors.ErrNotFound), "name %q: %v", name, err)
	}
}

func TestService_ValidateTemplate(t *testing.T) {
	service := newTestService(t, contractTemplate(), nil)

	result := service.ValidateTemplate()
	assert.True(t, result.Valid, result.Message)
	assert.Equal(t, 1, result.Pages)
}
