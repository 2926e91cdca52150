package forms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolver turns an object that may be an indirect reference into the object
// it points to. *model.Context satisfies it.
type resolver interface {
	Dereference(o types.Object) (types.Object, error)
}

// resolveDict dereferences obj and returns it as a dictionary. A nil dictionary
// with a nil error means obj is absent or not a dictionary.
func resolveDict(r resolver, obj types.Object) (types.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	o, err := r.Dereference(obj)
	if err != nil {
		return nil, err
	}
	switch d := o.(type) {
	case types.Dict:
		return d, nil
	case types.StreamDict:
		return d.Dict, nil
	}
	return nil, nil
}

// annotations normalizes a page's /Annots entry into the ordered list of
// annotation dictionaries. The entry may be absent, a single dictionary, an
// array, or an indirect reference to either. Array elements that do not
// resolve to a dictionary are dropped.
func annotations(r resolver, page types.Dict) ([]types.Dict, error) {
	obj, found := page.Find("Annots")
	if !found || obj == nil {
		return nil, nil
	}

	o, err := r.Dereference(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Annots: %w", err)
	}

	switch v := o.(type) {
	case types.Array:
		annots := make([]types.Dict, 0, len(v))
		for i, item := range v {
			d, err := resolveDict(r, item)
			if err != nil {
				return nil, fmt.Errorf("failed to dereference annotation %d: %w", i, err)
			}
			if d != nil {
				annots = append(annots, d)
			}
		}
		return annots, nil
	case types.Dict:
		return []types.Dict{v}, nil
	}
	return nil, nil
}

// textEntry returns the decoded text string stored under key.
func textEntry(r resolver, d types.Dict, key string) (string, bool) {
	obj, found := d.Find(key)
	if !found || obj == nil {
		return "", false
	}
	o, err := r.Dereference(obj)
	if err != nil {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return "", false
		}
		return s, true
	case types.Name:
		return string(v), true
	}
	return "", false
}

// nameEntry returns the name stored under key.
func nameEntry(r resolver, d types.Dict, key string) (string, bool) {
	obj, found := d.Find(key)
	if !found || obj == nil {
		return "", false
	}
	o, err := r.Dereference(obj)
	if err != nil {
		return "", false
	}
	if n, ok := o.(types.Name); ok {
		return string(n), true
	}
	return "", false
}

// fieldName returns the trimmed /T entry of an annotation or field.
func fieldName(r resolver, d types.Dict) string {
	name, ok := textEntry(r, d, "T")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

// appearanceStates returns the sorted state names of the normal appearance
// sub-dictionary /AP /N. Dictionaries are unordered, sorting keeps the result
// stable across runs.
func appearanceStates(r resolver, annot types.Dict) []string {
	ap, err := resolveDict(r, annot["AP"])
	if err != nil || ap == nil {
		return nil
	}
	obj, found := ap.Find("N")
	if !found {
		return nil
	}
	o, err := r.Dereference(obj)
	if err != nil {
		return nil
	}
	// A stream here is a single appearance, not a state dictionary.
	n, ok := o.(types.Dict)
	if !ok {
		return nil
	}
	states := make([]string, 0, len(n))
	for k := range n {
		states = append(states, strings.TrimPrefix(k, "/"))
	}
	sort.Strings(states)
	return states
}
