package forms

import (
	"errors"
	"fmt"
	"log"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Extractor lists the interactive fields of a PDF template
type Extractor struct {
	debugMode bool
}

// NewExtractor creates a new field extractor
func NewExtractor(debugMode bool) *Extractor {
	return &Extractor{
		debugMode: debugMode,
	}
}

// ExtractFields returns one descriptor per named field of the template's field
// dictionary. A template without form fields yields an empty slice.
func (e *Extractor) ExtractFields(template []byte) ([]FieldDescriptor, error) {
	fields, err := e.ExtractFieldsStrict(template)
	if errors.Is(err, pdferrors.ErrNoFormFields) {
		return []FieldDescriptor{}, nil
	}
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// ExtractFieldsStrict is ExtractFields, except that a template without form
// fields is reported as a NoFormFields error.
func (e *Extractor) ExtractFieldsStrict(template []byte) ([]FieldDescriptor, error) {
	ctx, err := readDocument(template)
	if err != nil {
		return nil, err
	}

	formObj, found, err := acroForm(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		if e.debugMode {
			log.Printf("No AcroForm dictionary found in document")
		}
		return nil, pdferrors.New(pdferrors.ErrorTypeNoFormFields, "no form fields found")
	}

	return e.extractFromAcroForm(ctx, formObj)
}

// extractFromAcroForm walks the /Fields tree of an AcroForm
func (e *Extractor) extractFromAcroForm(r resolver, formObj types.Object) ([]FieldDescriptor, error) {
	form, err := resolveDict(r, formObj)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to dereference AcroForm", err)
	}
	if form == nil {
		return nil, pdferrors.New(pdferrors.ErrorTypeNoFormFields, "no form fields found")
	}

	fieldsObj, found := form.Find("Fields")
	if !found {
		if e.debugMode {
			log.Printf("No Fields array found in AcroForm")
		}
		return nil, pdferrors.New(pdferrors.ErrorTypeNoFormFields, "no form fields found")
	}

	o, err := r.Dereference(fieldsObj)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to dereference Fields array", err)
	}
	fieldsArray, _ := o.(types.Array)

	c := &fieldCollector{
		r:       r,
		index:   make(map[string]int),
		visited: make(map[int]bool),
	}
	for i, fieldObj := range fieldsArray {
		if err := c.walk(fieldObj, "", ""); err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure,
				fmt.Sprintf("failed to process field %d", i), err)
		}
	}

	if len(c.fields) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeNoFormFields, "no form fields found")
	}

	if e.debugMode {
		for _, f := range c.fields {
			log.Printf("Extracted field: %s (type: %s)", f.PDFField, f.Type)
		}
	}

	return c.fields, nil
}

// fieldCollector flattens a field hierarchy into an ordered, name-keyed list
type fieldCollector struct {
	r       resolver
	fields  []FieldDescriptor
	index   map[string]int
	visited map[int]bool
}

// walk visits a field node and its kids. Kids are recorded before their
// parent. Nodes without /T are widgets and contribute no entry.
func (c *fieldCollector) walk(obj types.Object, parentName, inheritedType string) error {
	if ref, ok := obj.(types.IndirectRef); ok {
		objNr := int(ref.ObjectNumber)
		if c.visited[objNr] {
			return nil
		}
		c.visited[objNr] = true
	}

	field, err := resolveDict(c.r, obj)
	if err != nil {
		return err
	}
	if field == nil {
		return nil
	}

	fieldType := inheritedType
	if ft, ok := nameEntry(c.r, field, "FT"); ok {
		fieldType = ft
	}

	partial, named := textEntry(c.r, field, "T")
	name := parentName
	if named {
		name = partial
		if parentName != "" {
			name = parentName + "." + partial
		}
	}

	if kidsObj, found := field.Find("Kids"); found {
		o, err := c.r.Dereference(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to dereference Kids: %w", err)
		}
		if kids, ok := o.(types.Array); ok {
			for _, kid := range kids {
				if err := c.walk(kid, name, fieldType); err != nil {
					return err
				}
			}
		}
	}

	if !named {
		return nil
	}

	key := name
	if tm, ok := textEntry(c.r, field, "TM"); ok && tm != "" {
		key = tm
	}
	_, hasOptions := field.Find("Opt")

	c.add(FieldDescriptor{
		PDFField: key,
		Question: questionFor(key),
		Type:     classifyField(fieldType, hasOptions),
	})
	return nil
}

// add records a descriptor. A repeated name keeps its first position and takes
// the later definition.
func (c *fieldCollector) add(fd FieldDescriptor) {
	if i, ok := c.index[fd.PDFField]; ok {
		c.fields[i] = fd
		return
	}
	c.index[fd.PDFField] = len(c.fields)
	c.fields = append(c.fields, fd)
}

// classifyField maps a field type marker to a questionnaire type
func classifyField(ft string, hasOptions bool) FieldType {
	switch ft {
	case "Btn":
		if hasOptions {
			return FieldTypeRadio
		}
		return FieldTypeBoolean
	case "Tx":
		return FieldTypeText
	default:
		return FieldTypeText
	}
}
