package formtest

import (
	"fmt"
	"strings"
)

// Kind selects the widget a Field is built as
type Kind int

const (
	Text Kind = iota
	Checkbox
	Radio
	Choice
)

// Field describes one form field of a generated template
type Field struct {
	Name string
	Kind Kind

	// States are the /AP /N state names of a checkbox or the options of a
	// radio group. A checkbox with no states gets no appearance dictionary.
	States []string

	// Page is the zero-based page the widgets are placed on.
	Page int
}

// Options controls document level structure of a generated template
type Options struct {
	Pages      int
	NoAcroForm bool
}

// Template builds a PDF with the given fields on a single page
func Template(fields ...Field) []byte {
	return TemplateWithOptions(Options{Pages: 1}, fields...)
}

// TemplateWithOptions builds a PDF with the given fields
func TemplateWithOptions(opts Options, fields ...Field) []byte {
	if opts.Pages < 1 {
		opts.Pages = 1
	}

	b := &Builder{}
	catalog := b.Reserve()
	pagesNode := b.Reserve()

	pages := make([]int, opts.Pages)
	for i := range pages {
		pages[i] = b.Reserve()
	}
	annots := make([][]int, opts.Pages)

	var fieldRefs []int
	for _, f := range fields {
		page := pages[f.Page]
		switch f.Kind {
		case Checkbox:
			n := b.Add(checkbox(b, f, page))
			fieldRefs = append(fieldRefs, n)
			annots[f.Page] = append(annots[f.Page], n)
		case Radio:
			parent := b.Reserve()
			var kids []int
			for _, opt := range f.States {
				kid := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %s /P %s "+
					"/Rect [0 0 10 10] /AS /Off /AP << /N << /%s %s /Off %s >> >> >>",
					Ref(parent), Ref(page), opt, Ref(b.Add(appearance())), Ref(b.Add(appearance()))))
				kids = append(kids, kid)
			}
			options := make([]string, len(f.States))
			for i, s := range f.States {
				options[i] = "(" + s + ")"
			}
			b.Set(parent, fmt.Sprintf("<< /FT /Btn /T (%s) /Ff 49152 /Opt [%s] /Kids %s >>",
				f.Name, strings.Join(options, " "), Refs(kids...)))
			fieldRefs = append(fieldRefs, parent)
			annots[f.Page] = append(annots[f.Page], kids...)
		case Choice:
			n := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Ch /T (%s) /P %s "+
				"/Rect [0 0 100 20] /Opt [(a) (b)] >>", f.Name, Ref(page)))
			fieldRefs = append(fieldRefs, n)
			annots[f.Page] = append(annots[f.Page], n)
		default:
			n := b.Add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /P %s "+
				"/Rect [0 0 100 20] /DA (/Helv 0 Tf 0 g) >>", f.Name, Ref(page)))
			fieldRefs = append(fieldRefs, n)
			annots[f.Page] = append(annots[f.Page], n)
		}
	}

	for i, page := range pages {
		body := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792]", Ref(pagesNode))
		if len(annots[i]) > 0 {
			body += " /Annots " + Refs(annots[i]...)
		}
		b.Set(page, body+" >>")
	}
	b.Set(pagesNode, fmt.Sprintf("<< /Type /Pages /Kids %s /Count %d >>", Refs(pages...), len(pages)))

	if opts.NoAcroForm {
		b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", Ref(pagesNode)))
	} else {
		form := b.Add(fmt.Sprintf("<< /Fields %s /DA (/Helv 0 Tf 0 g) >>", Refs(fieldRefs...)))
		b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s /AcroForm %s >>", Ref(pagesNode), Ref(form)))
	}

	return b.Bytes(catalog)
}

// Truncated returns a PDF whose startxref offset points past the end of the
// file, with a dangling string literal for the fallback scanner to trip over.
func Truncated() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Title (unterminated >>\nendobj\nstartxref\n99999\n%%EOF\n")
}

func checkbox(b *Builder, f Field, page int) string {
	body := fmt.Sprintf("<< /Type /Annot /Subtype /Widget /FT /Btn /T (%s) /P %s /Rect [0 0 10 10] /V /Off /AS /Off",
		f.Name, Ref(page))
	if len(f.States) > 0 {
		entries := make([]string, len(f.States))
		for i, s := range f.States {
			entries[i] = fmt.Sprintf("/%s %s", s, Ref(b.Add(appearance())))
		}
		body += " /AP << /N << " + strings.Join(entries, " ") + " >> >>"
	}
	return body + " >>"
}

func appearance() string {
	return Stream("/Type /XObject /Subtype /Form /BBox [0 0 10 10]", "0 0 10 10 re f")
}
