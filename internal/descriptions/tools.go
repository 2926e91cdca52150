package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFGetFieldsDescription = `List the fillable fields of the configured PDF form template.

**When to use:** Before submitting answers, to learn which fields the form has and what kind of value each one takes.

**Returns:** A JSON array of {"pdf_field", "question", "type"} objects in document order. "type" is one of "text", "boolean" or "radio".

**Examples:**
• Build a questionnaire: "Get the fields of the contract template and ask the user one question per field"
• Check the form: "Which checkboxes does the template contain?"

**Common workflows:**
1. Questionnaire: pdf_get_fields → ask each question → pdf_submit_answers
2. Template review: pdf_get_fields → compare with the expected field list

**Best practices:** Use the "pdf_field" value verbatim as the answer key. A template without form fields returns an empty array.`

	PDFSubmitAnswersDescription = `Fill the PDF form template with answers and save the filled copy.

**When to use:** After collecting a value for the fields returned by pdf_get_fields.

**Parameters:** "answers" is an object mapping field names to values. Boolean fields take true/false, every other field takes a string (numbers are converted to text).

**Examples:**
• Fill a contract: {"answers": {"Name": "Jane Doe", "Agree": true}}
• Partial fill: only the fields present in "answers" are changed; unknown names are ignored.

**Common workflows:**
1. Questionnaire: pdf_get_fields → collect answers → pdf_submit_answers → download the file named in the result

**Best practices:** Send every answer in one call. Checkboxes are switched on with their own on-state, so pass booleans rather than "Yes"/"No" strings.`

	PDFValidateTemplateDescription = `Verify that the configured form template exists and is a readable PDF.

**When to use:** When field extraction or filling fails, or as a health check before a batch of submissions.

**Returns:** Validity, page count and size of the template, or the reason it cannot be used.`

	PDFServerInfoDescription = `Get server status, the configured template, the output directory and the available tools.

**When to use:** At the start of a session, to learn where filled files go and which tools exist.

**Returns:** Server name and version, template path and validity, output directory with the filled PDFs currently stored there, and usage guidance.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_get_fields":        PDFGetFieldsDescription,
	"pdf_submit_answers":    PDFSubmitAnswersDescription,
	"pdf_validate_template": PDFValidateTemplateDescription,
	"pdf_server_info":       PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all available tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
