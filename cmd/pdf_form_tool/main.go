package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms"
)

// FormToolResult is the outcome of one invocation
type FormToolResult struct {
	FilePath       string                  `json:"file_path"`
	Success        bool                    `json:"success"`
	FieldCount     int                     `json:"field_count"`
	Fields         []forms.FieldDescriptor `json:"fields"`
	OutputFile     string                  `json:"output_file,omitempty"`
	Error          string                  `json:"error,omitempty"`
	ExtractionTime string                  `json:"extraction_time,omitempty"`
}

type options struct {
	format          string
	answersFile     string
	outputFile      string
	strict          bool
	needAppearances bool
	verbose         bool
	help            bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	flags := pflag.NewFlagSet("pdf_form_tool", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json")
	flags.StringVar(&opts.answersFile, "answers", "", "JSON file with an answers object to fill into the PDF")
	flags.StringVar(&opts.outputFile, "out", "", "Where to write the filled PDF (default <name>-filled.pdf)")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when the PDF has no form fields")
	flags.BoolVar(&opts.needAppearances, "need-appearances", false, "Ask viewers to regenerate field appearances")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")
	flags.BoolVar(&opts.help, "help", false, "Show help message")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if opts.help {
		printHelp(stdout, flags)
		return 0
	}
	if flags.NArg() == 0 {
		fmt.Fprintf(stderr, "Error: PDF file path required\n\n")
		printUsage(stderr)
		return 1
	}
	if opts.format != "text" && opts.format != "json" {
		fmt.Fprintf(stderr, "Error: unsupported output format: %s\n", opts.format)
		return 1
	}

	pdfPath := flags.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(stderr, "Error: File not found: %s\n", pdfPath)
		return 1
	}

	result := process(pdfPath, opts)
	if err := outputResults(stdout, result, opts.format); err != nil {
		fmt.Fprintf(stderr, "Error outputting results: %v\n", err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}

func printHelp(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "PDF Form Tool - list and fill the AcroForm fields of a PDF")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	flags.SetOutput(w)
	flags.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "  pdf_form_tool contract.pdf")
	fmt.Fprintln(w, "  pdf_form_tool --format json contract.pdf")
	fmt.Fprintln(w, "  pdf_form_tool --answers answers.json --out filled.pdf contract.pdf")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  pdf_form_tool [OPTIONS] <pdf_file>")
}

// process lists the fields and, with --answers, writes a filled copy.
// Failures are reported in the result.
func process(pdfPath string, opts options) *FormToolResult {
	start := time.Now()

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		absPath = pdfPath
	}
	result := &FormToolResult{FilePath: absPath}
	fail := func(err error) *FormToolResult {
		result.Error = err.Error()
		return result
	}

	template, err := os.ReadFile(absPath)
	if err != nil {
		return fail(err)
	}

	extractor := forms.NewExtractor(opts.verbose)
	var fields []forms.FieldDescriptor
	if opts.strict {
		fields, err = extractor.ExtractFieldsStrict(template)
	} else {
		fields, err = extractor.ExtractFields(template)
	}
	if err != nil {
		return fail(err)
	}
	result.Fields = fields
	result.FieldCount = len(fields)

	if opts.answersFile != "" {
		answers, err := readAnswers(opts.answersFile)
		if err != nil {
			return fail(err)
		}

		filler := forms.NewFiller(forms.FillOptions{
			NeedAppearances: opts.needAppearances,
			Debug:           opts.verbose,
		})
		filled, err := filler.Fill(template, answers)
		if err != nil {
			return fail(err)
		}

		out := opts.outputFile
		if out == "" {
			ext := filepath.Ext(absPath)
			out = absPath[:len(absPath)-len(ext)] + "-filled.pdf"
		}
		if err := os.WriteFile(out, filled, 0o644); err != nil {
			return fail(fmt.Errorf("cannot write %s: %w", out, err))
		}
		result.OutputFile = out
	}

	result.Success = true
	result.ExtractionTime = time.Since(start).String()
	return result
}

// readAnswers loads a {"answers": {...}} document or a bare answers object
func readAnswers(path string) (forms.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read answers: %w", err)
	}

	decode := func(v interface{}) error {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		return decoder.Decode(v)
	}

	var wrapped struct {
		Answers forms.Answers `json:"answers"`
	}
	if err := decode(&wrapped); err != nil {
		return nil, fmt.Errorf("invalid answers file %s: %w", path, err)
	}
	if wrapped.Answers != nil {
		return wrapped.Answers, nil
	}

	var bare forms.Answers
	if err := decode(&bare); err != nil {
		return nil, fmt.Errorf("invalid answers file %s: %w", path, err)
	}
	return bare, nil
}

func outputResults(w io.Writer, result *FormToolResult, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return outputText(w, result)
}

func outputText(w io.Writer, result *FormToolResult) error {
	if !result.Success {
		_, err := fmt.Fprintf(w, "❌ Form processing failed: %s\n", result.Error)
		return err
	}

	if result.FieldCount == 0 {
		fmt.Fprintln(w, "⚠️  No form fields detected in the PDF")
	} else {
		fmt.Fprintf(w, "📊 Found %d form fields in %s\n\n", result.FieldCount, result.FilePath)
		for i, field := range result.Fields {
			fmt.Fprintf(w, "%d. %s [%s]\n", i+1, field.PDFField, field.Type)
			fmt.Fprintf(w, "   %s\n", field.Question)
		}
	}

	if result.OutputFile != "" {
		fmt.Fprintf(w, "\n✅ Filled PDF written to %s\n", result.OutputFile)
	}
	return nil
}
