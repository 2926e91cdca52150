package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ChandanaAtBessemer/Backend/internal/config"
	"github.com/ChandanaAtBessemer/Backend/internal/httpapi"
	"github.com/ChandanaAtBessemer/Backend/internal/mcp"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf/forms"
	"github.com/ChandanaAtBessemer/Backend/internal/uplink"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runner is implemented by the HTTP API and the MCP stdio server
type runner interface {
	Run(ctx context.Context) error
}

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// serviceOptions maps the configuration onto the form service
func serviceOptions(cfg *config.Config) pdf.Options {
	return pdf.Options{
		TemplatePath:    cfg.TemplatePath,
		OutputDirectory: cfg.OutputDirectory,
		OutputFilename:  cfg.OutputFilename,
		MaxFileSize:     cfg.MaxFileSize,
		UniqueOutput:    cfg.UniqueOutput,
		Fill: forms.FillOptions{
			NeedAppearances: cfg.NeedAppearances,
			FirstPageOnly:   cfg.FirstPageOnly,
		},
		Debug: cfg.IsDebug(),
	}
}

// checkTemplate validates the template and requires it to have form fields
func checkTemplate(service *pdf.Service, out io.Writer) error {
	result := service.ValidateTemplate()
	if !result.Valid {
		return fmt.Errorf("template %s is not usable: %s", result.Path, result.Message)
	}

	fields, err := service.GetFieldsStrict()
	if err != nil {
		return fmt.Errorf("template %s: %w", result.Path, err)
	}

	fmt.Fprintf(out, "Template %s: %d pages, %d form fields\n", result.Path, result.Pages, len(fields))
	for _, field := range fields {
		fmt.Fprintf(out, "  %-8s %s\n", field.Type, field.PDFField)
	}
	return nil
}

// connectUplink registers with the uplink. Failures are logged, not fatal.
func connectUplink(ctx context.Context, cfg *config.Config) *uplink.Client {
	if !cfg.UplinkEnabled() {
		return nil
	}

	client, err := uplink.Connect(ctx, uplink.Options{
		Address: cfg.UplinkAddress,
		Key:     cfg.UplinkKey,
		TLS:     cfg.UplinkTLS,
	})
	if err != nil {
		log.Printf("Uplink unavailable, continuing without it: %v", err)
		return nil
	}
	return client
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server runner) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Println("Server stopped successfully")
	return nil
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server runner) error {
	// The parent process controls our lifecycle; Run returns when stdin closes.
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(os.Stdout)
			return
		}
	}

	checkOnly := false
	args := os.Args[:1]
	for _, arg := range os.Args[1:] {
		if arg == "--check-template" {
			checkOnly = true
			continue
		}
		args = append(args, arg)
	}
	os.Args = args

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service, err := pdf.NewService(serviceOptions(cfg))
	if err != nil {
		log.Fatalf("Failed to create PDF form service: %v", err)
	}

	if checkOnly {
		if err := checkTemplate(service, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if client := connectUplink(ctx, cfg); client != nil {
		defer client.Close()
	}

	if cfg.IsServerMode() {
		server, err := httpapi.NewServer(cfg, service)
		if err != nil {
			log.Fatalf("Failed to create HTTP server: %v", err)
		}
		if err := runServerMode(ctx, cancel, server); err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		return
	}

	server, err := mcp.NewServer(cfg, service)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	if err := runStdioMode(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Form Server\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
