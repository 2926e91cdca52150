package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ChandanaAtBessemer/Backend/internal/pdf"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort           = 3030
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultTemplatePath   = "PQFT_Fillable_1Feb17_H.pdf"
	DefaultOutputDir      = "output"
	DefaultOutputFilename = "filled_contract.pdf"
	DefaultEnvFile        = ".env"

	// EnvPrefix prefixes every environment variable the server reads
	EnvPrefix = "PDF_FORM"

	// LegacyUplinkKeyEnv is also accepted for the uplink key
	LegacyUplinkKeyEnv = "ANVIL_UPLINK_KEY"
)

// Config holds all configuration for the PDF form server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Form configuration
	TemplatePath    string
	OutputDirectory string
	OutputFilename  string
	UniqueOutput    bool
	NeedAppearances bool
	FirstPageOnly   bool

	// Uplink configuration
	UplinkAddress string
	UplinkKey     string
	UplinkTLS     bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum template size in bytes
	EnvFile     string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeServer,
		Host:            DefaultHost,
		Port:            DefaultPort,
		TemplatePath:    DefaultTemplatePath,
		OutputDirectory: DefaultOutputDir,
		OutputFilename:  DefaultOutputFilename,
		Version:         "1.0.0",
		ServerName:      "pdf-form-server",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
		EnvFile:         DefaultEnvFile,
	}
}

// LoadFromFlags parses command line flags, the environment and an optional
// .env file, and returns a validated configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	if err := LoadEnvFile(envFileFromArgs(os.Args[1:], cfg.EnvFile)); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}
	if cfg.TemplatePath != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplatePath); err == nil {
			cfg.TemplatePath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile copies the entries of a dotenv file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(key)
		if _, exists := os.LookupEnv(envKey); exists {
			continue
		}
		if err := os.Setenv(envKey, v.GetString(key)); err != nil {
			return fmt.Errorf("cannot set %s: %w", envKey, err)
		}
	}
	return nil
}

// envFileFromArgs finds --envfile before flags are parsed, since the file has
// to be loaded before the environment is bound.
func envFileFromArgs(args []string, fallback string) string {
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--envfile="):
			return strings.TrimPrefix(arg, "--envfile=")
		case arg == "--envfile" && i+1 < len(args):
			return args[i+1]
		}
	}
	if env := os.Getenv(EnvPrefix + "_ENVFILE"); env != "" {
		return env
	}
	return fallback
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("outputdir", cfg.OutputDirectory)
	viper.SetDefault("outputfile", cfg.OutputFilename)
	viper.SetDefault("uniqueoutput", cfg.UniqueOutput)
	viper.SetDefault("needappearances", cfg.NeedAppearances)
	viper.SetDefault("firstpageonly", cfg.FirstPageOnly)
	viper.SetDefault("uplinkaddr", cfg.UplinkAddress)
	viper.SetDefault("uplinktls", cfg.UplinkTLS)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("envfile", cfg.EnvFile)

	_ = viper.BindEnv("uplinkkey", EnvPrefix+"_UPLINKKEY", LegacyUplinkKeyEnv)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("template", cfg.TemplatePath, "Path to the fillable PDF template")
	pflag.String("outputdir", cfg.OutputDirectory, "Directory filled PDFs are written to")
	pflag.String("outputfile", cfg.OutputFilename, "File name of the filled PDF")
	pflag.Bool("uniqueoutput", cfg.UniqueOutput, "Write every submission to its own file")
	pflag.Bool("needappearances", cfg.NeedAppearances, "Ask viewers to regenerate field appearances")
	pflag.Bool("firstpageonly", cfg.FirstPageOnly, "Only fill widgets on the first page")
	pflag.String("uplinkaddr", cfg.UplinkAddress, "Address of the uplink registration endpoint (optional)")
	pflag.String("uplinkkey", cfg.UplinkKey, "Secret key for the uplink (prefer the environment)")
	pflag.Bool("uplinktls", cfg.UplinkTLS, "Use TLS for the uplink connection")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template size in bytes")
	pflag.String("envfile", cfg.EnvFile, "Dotenv file loaded at startup")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "template", "outputdir", "outputfile", "uniqueoutput",
		"needappearances", "firstpageonly", "uplinkaddr", "uplinkkey", "uplinktls", "loglevel", "maxfilesize", "envfile",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Form Server - extract and fill AcroForm fields of a PDF template\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                       # HTTP API on 127.0.0.1:3030\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --template=form.pdf --outputdir=/tmp  # custom template and output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                          # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_TEMPLATE      Template path\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_OUTPUTDIR     Output directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_OUTPUTFILE    Output file name\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_UPLINKADDR    Uplink address\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_UPLINKKEY     Uplink key (or %s)\n", LegacyUplinkKeyEnv)
		fmt.Fprintf(os.Stderr, "  PDF_FORM_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORM_MAXFILESIZE   Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.TemplatePath = viper.GetString("template")
	cfg.OutputDirectory = viper.GetString("outputdir")
	cfg.OutputFilename = viper.GetString("outputfile")
	cfg.UniqueOutput = viper.GetBool("uniqueoutput")
	cfg.NeedAppearances = viper.GetBool("needappearances")
	cfg.FirstPageOnly = viper.GetBool("firstpageonly")
	cfg.UplinkAddress = viper.GetString("uplinkaddr")
	cfg.UplinkKey = viper.GetString("uplinkkey")
	cfg.UplinkTLS = viper.GetBool("uplinktls")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.EnvFile = viper.GetString("envfile")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplatePath == "" {
		return errors.New("template path cannot be empty")
	}

	if c.OutputFilename == "" || filepath.Base(c.OutputFilename) != c.OutputFilename {
		return fmt.Errorf("output file must be a plain file name: %q", c.OutputFilename)
	}

	// Validate output directory, create it if it doesn't exist
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, pdf.DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.UplinkAddress != "" && c.UplinkKey == "" {
		return fmt.Errorf("uplink address set but no uplink key (set %s_UPLINKKEY or %s)", EnvPrefix, LegacyUplinkKeyEnv)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// UplinkEnabled reports whether an uplink registration is configured
func (c *Config) UplinkEnabled() bool {
	return c.UplinkAddress != ""
}

// String returns a string representation of the configuration. The uplink key
// is never printed.
func (c *Config) String() string {
	key := ""
	if c.UplinkKey != "" {
		key = "[set]"
	}
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TemplatePath: %s, OutputDirectory: %s, "+
		"OutputFilename: %s, UniqueOutput: %t, UplinkAddress: %s, UplinkKey: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.TemplatePath, c.OutputDirectory, c.OutputFilename, c.UniqueOutput,
		c.UplinkAddress, key, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
