package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ChandanaAtBessemer/Backend/internal/config"
	"github.com/ChandanaAtBessemer/Backend/internal/descriptions"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf"
)

const missingAnswersMessage = "Missing 'answers' in request"

// Server exposes the form service as MCP tools
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	getFieldsTool := mcp.NewTool(
		"pdf_get_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_get_fields")),
	)
	s.mcpServer.AddTool(getFieldsTool, s.handleGetFields)

	submitAnswersTool := mcp.NewTool(
		"pdf_submit_answers",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_submit_answers")),
		mcp.WithObject("answers",
			mcp.Required(),
			mcp.Description("Field name to value; booleans for checkboxes, text otherwise"),
		),
	)
	s.mcpServer.AddTool(submitAnswersTool, s.handleSubmitAnswers)

	validateTool := mcp.NewTool(
		"pdf_validate_template",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_template")),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateTemplate)

	serverInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleGetFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := s.pdfService.GetFields()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode fields: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleSubmitAnswers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	answers, ok := args["answers"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError(missingAnswersMessage), nil
	}

	result, err := s.pdfService.SubmitAnswers(pdf.SubmitAnswersRequest{Answers: answers})
	if err != nil {
		return mcp.NewToolResultError("PDF generation failed: " + err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatSubmitAnswersResult(result, len(answers))), nil
}

func (s *Server) handleValidateTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.pdfService.ValidateTemplate()

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Template %s is valid and readable (%d pages, %d bytes)",
			result.Path, result.Pages, result.Size)
	} else {
		responseText = fmt.Sprintf("Template validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods
func (s *Server) formatSubmitAnswersResult(result *pdf.SubmitAnswersResult, answerCount int) string {
	text := fmt.Sprintf("%s (%d answers)\n", result.Message, answerCount)
	text += fmt.Sprintf("Output file: %s\n", result.OutputFile)
	text += fmt.Sprintf("Directory: %s\n", s.pdfService.OutputDirectory())
	text += fmt.Sprintf("Download URL: %s\n", result.DownloadURL)
	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📄 Template: %s", result.Template.Path)
	if result.Template.Valid {
		text += fmt.Sprintf(" (%d pages)\n", result.Template.Pages)
	} else {
		text += fmt.Sprintf(" (invalid: %s)\n", result.Template.Message)
	}
	text += fmt.Sprintf("📁 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	if len(result.OutputFiles) > 0 {
		text += fmt.Sprintf("📂 Filled PDFs (%d):\n", len(result.OutputFiles))
		for i, file := range result.OutputFiles {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.OutputFiles)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes, %s)\n", i+1, file.Name, file.Size, file.ModifiedTime)
		}
		text += "\n"
	} else {
		text += "📂 Filled PDFs: none yet\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance
	return text
}

// Run serves the tools over stdin/stdout until ctx is cancelled or stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves the tools over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form MCP server in stdio mode")
		log.Printf("Template: %s", s.pdfService.TemplatePath())
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(log.Writer(), "mcp: ", log.LstdFlags))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("failed to serve stdio: %w", err)
}
