package forms

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms/formtest"
)

// widgetState is what a filled widget carries in /V and /AS
type widgetState struct {
	V  string
	AS string
}

// readWidgets parses a PDF and returns the state of every named widget
func readWidgets(t *testing.T, pdf []byte) map[string]widgetState {
	t.Helper()

	ctx, err := readDocument(pdf)
	require.NoError(t, err)

	pages, err := pageDicts(ctx, 0)
	require.NoError(t, err)

	states := make(map[string]widgetState)
	for _, page := range pages {
		annots, err := annotations(ctx, page)
		require.NoError(t, err)
		for _, annot := range annots {
			name := fieldName(ctx, annot)
			if name == "" {
				continue
			}
			var s widgetState
			if v, ok := nameEntry(ctx, annot, "V"); ok {
				s.V = v
			} else if v, ok := textEntry(ctx, annot, "V"); ok {
				s.V = v
			}
			s.AS, _ = nameEntry(ctx, annot, "AS")
			states[name] = s
		}
	}
	return states
}

func TestFiller_EndToEnd(t *testing.T) {
	template := formtest.Template(
		formtest.Field{Name: "FullName", Kind: formtest.Text},
		formtest.Field{Name: "Agree", Kind: formtest.Checkbox, States: []string{"Off", "Yes"}},
	)

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{
		"FullName": "Jane Doe",
		"Agree":    true,
	})
	require.NoError(t, err)

	widgets := readWidgets(t, out)
	assert.Equal(t, "Jane Doe", widgets["FullName"].V)
	assert.Equal(t, widgetState{V: "Yes", AS: "Yes"}, widgets["Agree"])
}

func TestFiller_Checkbox(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		answer bool
		want   string
	}{
		{name: "checked", states: []string{"Off", "Yes"}, answer: true, want: "Yes"},
		{name: "unchecked", states: []string{"Off", "Yes"}, answer: false, want: "Off"},
		{name: "custom export value", states: []string{"Off", "Agreed"}, answer: true, want: "Agreed"},
		{name: "off only falls back", states: []string{"Off"}, answer: true, want: "Yes"},
		{name: "no appearance falls back", states: nil, answer: true, want: "Yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template := formtest.Template(formtest.Field{Name: "Agree", Kind: formtest.Checkbox, States: tt.states})

			out, err := NewFiller(FillOptions{}).Fill(template, Answers{"Agree": tt.answer})
			require.NoError(t, err)

			assert.Equal(t, widgetState{V: tt.want, AS: tt.want}, readWidgets(t, out)["Agree"])
		})
	}
}

func TestFiller_TextValues(t *testing.T) {
	template := formtest.Template(
		formtest.Field{Name: "name"},
		formtest.Field{Name: "note"},
		formtest.Field{Name: "city"},
	)

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{
		"name": 42,
		"note": "a (b) \\ c",
		"city": "Zoë",
	})
	require.NoError(t, err)

	widgets := readWidgets(t, out)
	assert.Equal(t, "42", widgets["name"].V)
	assert.Equal(t, "a (b) \\ c", widgets["note"].V)
	assert.Equal(t, "Zoë", widgets["city"].V)
}

func TestFiller_UnknownFieldIgnored(t *testing.T) {
	template := formtest.Template(
		formtest.Field{Name: "FullName"},
		formtest.Field{Name: "Agree", Kind: formtest.Checkbox, States: []string{"Off", "Yes"}},
	)

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{"NoSuchField": "x", "Other": true})
	require.NoError(t, err)

	widgets := readWidgets(t, out)
	assert.Equal(t, "", widgets["FullName"].V)
	assert.Equal(t, widgetState{V: "Off", AS: "Off"}, widgets["Agree"])
}

func TestFiller_Idempotent(t *testing.T) {
	template := formtest.Template(
		formtest.Field{Name: "FullName"},
		formtest.Field{Name: "Agree", Kind: formtest.Checkbox, States: []string{"Off", "Yes", "Maybe"}},
	)
	answers := Answers{"FullName": "Jane Doe", "Agree": true}
	filler := NewFiller(FillOptions{})

	first, err := filler.Fill(template, answers)
	require.NoError(t, err)
	second, err := filler.Fill(template, answers)
	require.NoError(t, err)

	assert.Equal(t, readWidgets(t, first), readWidgets(t, second))
	assert.Equal(t, "Maybe", readWidgets(t, first)["Agree"].V)
}

func TestFiller_PreservesAcroForm(t *testing.T) {
	template := formtest.Template(formtest.Field{Name: "FullName"})

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{"FullName": "x"})
	require.NoError(t, err)

	fields, err := NewExtractor(false).ExtractFieldsStrict(out)
	require.NoError(t, err)
	assert.Equal(t, []FieldDescriptor{descriptor("FullName", FieldTypeText)}, fields)
}

func TestFiller_NeedAppearances(t *testing.T) {
	template := formtest.Template(formtest.Field{Name: "FullName"})

	out, err := NewFiller(FillOptions{NeedAppearances: true}).Fill(template, Answers{"FullName": "x"})
	require.NoError(t, err)

	ctx, err := readDocument(out)
	require.NoError(t, err)
	formObj, found, err := acroForm(ctx)
	require.NoError(t, err)
	require.True(t, found)
	form, err := resolveDict(ctx, formObj)
	require.NoError(t, err)

	v, found := form.Find("NeedAppearances")
	require.True(t, found)
	assert.Equal(t, types.Boolean(true), v)
}

func TestFiller_NoAcroForm(t *testing.T) {
	template := formtest.TemplateWithOptions(formtest.Options{NoAcroForm: true})

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{"FullName": "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = NewExtractor(false).ExtractFieldsStrict(out)
	assert.True(t, errors.Is(err, pdferrors.ErrNoFormFields))
}

func TestFiller_MultiPage(t *testing.T) {
	template := formtest.TemplateWithOptions(formtest.Options{Pages: 2},
		formtest.Field{Name: "first", Page: 0},
		formtest.Field{Name: "second", Page: 1},
	)
	answers := Answers{"first": "1", "second": "2"}

	out, err := NewFiller(FillOptions{}).Fill(template, answers)
	require.NoError(t, err)
	widgets := readWidgets(t, out)
	assert.Equal(t, "1", widgets["first"].V)
	assert.Equal(t, "2", widgets["second"].V)

	out, err = NewFiller(FillOptions{FirstPageOnly: true}).Fill(template, answers)
	require.NoError(t, err)
	widgets = readWidgets(t, out)
	assert.Equal(t, "1", widgets["first"].V)
	assert.Equal(t, "", widgets["second"].V)
}

func TestFiller_RadioWidgetsWithoutNameSkipped(t *testing.T) {
	template := formtest.Template(formtest.Field{Name: "Plan", Kind: formtest.Radio, States: []string{"Basic", "Pro"}})

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{"Plan": "Pro"})
	require.NoError(t, err)
	assert.Empty(t, readWidgets(t, out))
}

func TestFiller_MalformedInput(t *testing.T) {
	for _, input := range [][]byte{[]byte("%PDF-1.7\ngarbage"), formtest.Truncated()} {
		_, err := NewFiller(FillOptions{}).Fill(input, Answers{"a": "b"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, pdferrors.ErrParseFailure), "got %v", err)
	}
}

func TestFiller_FillsLexicallyFirstOnState(t *testing.T) {
	template := formtest.Template(
		formtest.Field{Name: "choice", Kind: formtest.Checkbox, States: []string{"Off", "Yes", "Maybe"}},
	)

	out, err := NewFiller(FillOptions{}).Fill(template, Answers{"choice": true})
	require.NoError(t, err)

	fields, err := NewExtractor(false).ExtractFields(out)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, FieldTypeBoolean, fields[0].Type)
	assert.Equal(t, widgetState{V: "Maybe", AS: "Maybe"}, readWidgets(t, out)["choice"])
}

func TestFiller_FillAnnotation(t *testing.T) {
	stream := types.StreamDict{Dict: types.Dict{"Subtype": types.Name("Form")}}
	table := objectTable{
		9: types.Dict{"N": types.Dict{"Off": stream, "On": stream}},
	}
	filler := NewFiller(FillOptions{})

	t.Run("missing name skipped", func(t *testing.T) {
		annot := types.Dict{"Subtype": types.Name("Widget")}
		require.NoError(t, filler.fillAnnotation(table, annot, Answers{"": "x"}))
		_, found := annot.Find("V")
		assert.False(t, found)
	})

	t.Run("indirect appearance", func(t *testing.T) {
		annot := types.Dict{"T": types.StringLiteral(" box "), "AP": ref(9)}
		require.NoError(t, filler.fillAnnotation(table, annot, Answers{"box": true}))
		assert.Equal(t, types.Name("On"), annot["V"])
		assert.Equal(t, types.Name("On"), annot["AS"])
	})

	t.Run("text leaves appearance state", func(t *testing.T) {
		annot := types.Dict{"T": types.StringLiteral("name"), "AS": types.Name("Off")}
		require.NoError(t, filler.fillAnnotation(table, annot, Answers{"name": 3.25}))
		assert.Equal(t, types.StringLiteral("3.25"), annot["V"])
		assert.Equal(t, types.Name("Off"), annot["AS"])
	})

	t.Run("string true is text", func(t *testing.T) {
		annot := types.Dict{"T": types.StringLiteral("flag")}
		require.NoError(t, filler.fillAnnotation(table, annot, Answers{"flag": fmt.Sprint(true)}))
		assert.Equal(t, types.StringLiteral("true"), annot["V"])
	})
}
