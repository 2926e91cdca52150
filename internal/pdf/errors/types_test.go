package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormError_Is(t *testing.T) {
	err := Wrap(ErrorTypeParseFailure, "failed to read PDF context", fmt.Errorf("bad xref"))

	assert.True(t, stderrors.Is(err, ErrParseFailure))
	assert.False(t, stderrors.Is(err, ErrNoFormFields))

	wrapped := fmt.Errorf("get fields: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrParseFailure))
}

func TestFormError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FormError
		want string
	}{
		{
			name: "message only",
			err:  New(ErrorTypeNoFormFields, "no form fields found"),
			want: "no form fields found",
		},
		{
			name: "with cause",
			err:  Wrap(ErrorTypeIOFailure, "cannot write output", fmt.Errorf("disk full")),
			want: "cannot write output: disk full",
		},
		{
			name: "with file",
			err:  New(ErrorTypeNotFound, "file not found").WithFile("out.pdf"),
			want: "file not found (out.pdf)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorType_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorTypeMissingAnswers.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, ErrorTypeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeParseFailure.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeUnknown.HTTPStatus())
}

func TestTypeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(ErrorTypeIOFailure, "read template", fmt.Errorf("denied")))
	assert.Equal(t, ErrorTypeIOFailure, TypeOf(err))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
	assert.Equal(t, "IO_FAILURE", ErrorTypeIOFailure.String())
}
