package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// DefaultOnState is the export value used when a checkbox has no usable
// appearance states.
const DefaultOnState = "Yes"

// OffState is the appearance state of an unchecked checkbox
const OffState = "Off"

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	"\r", `\r`,
)

var utf16Encoder = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// answerText renders a non-boolean answer as the string written to /V
func answerText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// textObject encodes s as a PDF text string. ASCII stays a literal string;
// anything else becomes UTF-16BE with a byte order mark, hex encoded.
func textObject(s string) (types.Object, error) {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return types.StringLiteral(literalEscaper.Replace(s)), nil
	}

	encoded, err := utf16Encoder.NewEncoder().String(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text value: %w", err)
	}
	return types.NewHexLiteral([]byte(encoded)), nil
}

// onState picks the export value of a checkbox from its appearance states: the
// first state that is not Off, or DefaultOnState. States come from
// appearanceStates in lexical order, so {Yes, Maybe} resolves to Maybe.
func onState(states []string) string {
	for _, s := range states {
		if s != "" && s != OffState {
			return s
		}
	}
	return DefaultOnState
}

// exportState is the name written to /V and /AS for a boolean answer
func exportState(states []string, checked bool) string {
	if !checked {
		return OffState
	}
	return onState(states)
}
