package forms

import (
	"encoding/json"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerText(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "string", value: "Jane Doe", want: "Jane Doe"},
		{name: "json number", value: json.Number("42"), want: "42"},
		{name: "float integral", value: float64(42), want: "42"},
		{name: "float fraction", value: 4.5, want: "4.5"},
		{name: "int", value: 7, want: "7"},
		{name: "nil", value: nil, want: ""},
		{name: "slice", value: []string{"a", "b"}, want: "[a b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, answerText(tt.value))
		})
	}
}

func TestTextObject(t *testing.T) {
	obj, err := textObject("a (b) \\ c")
	require.NoError(t, err)
	assert.Equal(t, types.StringLiteral(`a \(b\) \\ c`), obj)

	obj, err = textObject("Zoë")
	require.NoError(t, err)
	hl, ok := obj.(types.HexLiteral)
	require.True(t, ok, "non-ASCII text should be hex encoded")
	assert.Equal(t, types.HexLiteral("feff005a006f00eb"), hl)
}

func TestExportState(t *testing.T) {
	tests := []struct {
		name    string
		states  []string
		checked bool
		want    string
	}{
		{name: "yes checked", states: []string{"Off", "Yes"}, checked: true, want: "Yes"},
		{name: "yes unchecked", states: []string{"Off", "Yes"}, checked: false, want: "Off"},
		{name: "custom export value", states: []string{"Off", "Accepted"}, checked: true, want: "Accepted"},
		{name: "off only falls back", states: []string{"Off"}, checked: true, want: "Yes"},
		{name: "no states falls back", states: nil, checked: true, want: "Yes"},
		{name: "first non-off wins", states: []string{"A", "B", "Off"}, checked: true, want: "A"},
		{name: "lexical order decides", states: []string{"Maybe", "Off", "Yes"}, checked: true, want: "Maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportState(tt.states, tt.checked))
		})
	}
}
