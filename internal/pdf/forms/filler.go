package forms

import (
	"bytes"
	"fmt"
	"io"
	"log"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Filler writes answers into a copy of a PDF template
type Filler struct {
	opts FillOptions
}

// NewFiller creates a new filler
func NewFiller(opts FillOptions) *Filler {
	return &Filler{
		opts: opts,
	}
}

// Fill returns the bytes of a filled copy of template
func (f *Filler) Fill(template []byte, answers Answers) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FillTo(&buf, template, answers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FillTo writes a filled copy of template to w. The template itself is never
// modified.
func (f *Filler) FillTo(w io.Writer, template []byte, answers Answers) error {
	src, err := readDocument(template)
	if err != nil {
		return err
	}

	// A second parse of the same bytes is the output document: it holds every
	// page of the source, in order, with identical object numbers.
	dst, err := readDocument(template)
	if err != nil {
		return err
	}

	limit := 0
	if f.opts.FirstPageOnly {
		limit = 1
	}
	pages, err := pageDicts(dst, limit)
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to read pages", err)
	}

	for i, page := range pages {
		annots, err := annotations(dst, page)
		if err != nil {
			return pdferrors.Wrap(pdferrors.ErrorTypeParseFailure,
				fmt.Sprintf("failed to read annotations of page %d", i+1), err)
		}
		for _, annot := range annots {
			if err := f.fillAnnotation(dst, annot, answers); err != nil {
				return err
			}
		}
	}

	if err := f.preserveAcroForm(src, dst); err != nil {
		return err
	}

	return writeDocument(dst, w)
}

// fillAnnotation applies the answer for annot's field name, if there is one
func (f *Filler) fillAnnotation(r resolver, annot types.Dict, answers Answers) error {
	name := fieldName(r, annot)
	if name == "" {
		return nil
	}

	value, ok := answers[name]
	if !ok {
		return nil
	}

	if checked, isBool := value.(bool); isBool {
		states := appearanceStates(r, annot)
		state := types.Name(exportState(states, checked))
		if f.opts.Debug {
			log.Printf("Field: %s appearance states: %v -> %s", name, states, state)
		}
		annot["V"] = state
		annot["AS"] = state
		return nil
	}

	text, err := textObject(answerText(value))
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeUnknown, fmt.Sprintf("cannot set field %q", name), err)
	}
	if f.opts.Debug {
		log.Printf("Field: %s value: %v", name, value)
	}
	annot["V"] = text
	return nil
}

// preserveAcroForm copies the source catalog's /AcroForm entry onto the output
// catalog. Sources without one are left alone.
func (f *Filler) preserveAcroForm(src, dst *model.Context) error {
	formObj, found, err := acroForm(src)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	root, err := dst.Catalog()
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to get output catalog", err)
	}
	root["AcroForm"] = formObj

	if !f.opts.NeedAppearances {
		return nil
	}
	form, err := resolveDict(dst, formObj)
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to dereference AcroForm", err)
	}
	if form != nil {
		form["NeedAppearances"] = types.Boolean(true)
	}
	return nil
}
