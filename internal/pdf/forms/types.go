// Package forms reads AcroForm field definitions from a PDF template and writes
// answers back into the widget annotations of a filled copy.
package forms

import "fmt"

// FieldType is the questionnaire type a form field is presented as
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeRadio   FieldType = "radio"
)

// FieldDescriptor describes one named field of the template
type FieldDescriptor struct {
	PDFField string    `json:"pdf_field"`
	Question string    `json:"question"`
	Type     FieldType `json:"type"`
}

// Answers maps field names to answer values. A bool answer is treated as a
// checkbox state, anything else is written as text.
type Answers map[string]interface{}

// FillOptions tunes the filler. The zero value reproduces the default fill path.
type FillOptions struct {
	// NeedAppearances sets /NeedAppearances on the output AcroForm so viewers
	// regenerate text field appearances.
	NeedAppearances bool

	// FirstPageOnly restricts filling to the annotations of the first page.
	FirstPageOnly bool

	Debug bool
}

// questionFor builds the prompt shown for a field
func questionFor(name string) string {
	return fmt.Sprintf("What should be entered for '%s'?", name)
}
