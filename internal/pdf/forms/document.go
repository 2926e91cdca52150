package forms

import (
	"bytes"
	"fmt"
	"io"

	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// readDocument parses template into a fresh pdfcpu context. Each call yields an
// independent object graph; nothing is shared between calls. pdfcpu panics on
// some truncated inputs; those surface as parse failures.
func readDocument(template []byte) (ctx *model.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = pdferrors.New(pdferrors.ErrorTypeParseFailure, fmt.Sprintf("malformed PDF: %v", r))
		}
	}()

	if len(template) == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeParseFailure, "empty PDF input")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err = api.ReadContext(bytes.NewReader(template), conf)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to read PDF context", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to ensure page count", err)
	}

	return ctx, nil
}

// writeDocument serializes ctx to w.
func writeDocument(ctx *model.Context, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pdferrors.New(pdferrors.ErrorTypeIOFailure, fmt.Sprintf("failed to write PDF: %v", r))
		}
	}()

	if err := api.WriteContext(ctx, w); err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeIOFailure, "failed to write PDF", err)
	}
	return nil
}

// acroForm returns the /AcroForm entry of the catalog as stored, without
// dereferencing it.
func acroForm(ctx *model.Context) (types.Object, bool, error) {
	root, err := ctx.Catalog()
	if err != nil {
		return nil, false, pdferrors.Wrap(pdferrors.ErrorTypeParseFailure, "failed to get catalog", err)
	}
	obj, found := root.Find("AcroForm")
	if !found || obj == nil {
		return nil, false, nil
	}
	return obj, true, nil
}

// pageDicts returns the page dictionaries of ctx in page order.
func pageDicts(ctx *model.Context, limit int) ([]types.Dict, error) {
	count := ctx.PageCount
	if limit > 0 && limit < count {
		count = limit
	}
	pages := make([]types.Dict, 0, count)
	for i := 1; i <= count; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("failed to get page %d: %w", i, err)
		}
		if pageDict == nil {
			continue
		}
		pages = append(pages, pageDict)
	}
	return pages, nil
}
