// Package cli implements the ocr-session command line.
package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-session/internal/config"
	"github.com/ironsheep/ocr-session/internal/imaging"
	"github.com/ironsheep/ocr-session/internal/ocr"
	"github.com/ironsheep/ocr-session/internal/session"
)

// BuildInfo identifies the binary. Fields are set by ldflags in main.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// app carries state shared by the commands of one invocation.
type app struct {
	info BuildInfo
	cfg  *config.Config

	// newEngine builds the OCR engine for a tessdata prefix.
	newEngine func(tessdataPrefix string) ocr.Engine

	// getenv reads configuration overrides.
	getenv func(string) string

	flags struct {
		languages     string
		lazyLanguages string
		tessdata      string
		failureMode   string
		overlap       string
		logLevel      string
		fetchTimeout  time.Duration
		httpAddr      string
		jwtSecret     string
	}
}

func newApp(info BuildInfo) *app {
	return &app{
		info:      info,
		newEngine: func(prefix string) ocr.Engine { return ocr.NewTesseractEngine(prefix) },
		getenv:    os.Getenv,
	}
}

// NewRootCmd creates the root command. Running it without a subcommand
// starts the MCP server.
func NewRootCmd(info BuildInfo) *cobra.Command {
	return newApp(info).rootCmd()
}

// Execute runs the command line and exits the process on failure.
func Execute(info BuildInfo) {
	if err := NewRootCmd(info).Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ocr-session",
		Short: "OCR session manager with an MCP server",
		Long: `ocr-session manages a single Tesseract OCR worker: create it for a set of
languages, recognize text from images, and release it.

Without a subcommand it serves the session over MCP (JSON-RPC 2.0 on
stdin/stdout) for MCP clients such as Claude Desktop.

Environment variables:
  OCR_SESSION_LOG_LEVEL=debug          Enable debug logging
  OCR_SESSION_LANGUAGES=tha+eng        Languages for initialize
  OCR_SESSION_LAZY_LANGUAGE=eng        Languages when recognize creates the worker
  OCR_SESSION_TESSDATA_PREFIX=/path    Directory holding *.traineddata
  OCR_SESSION_FAILURE_MODE=silent      silent or return
  OCR_SESSION_OVERLAP=serialize        serialize or reject
  OCR_SESSION_FETCH_TIMEOUT=30s        Timeout for URL and S3 images
  OCR_SESSION_HTTP_ADDR=:8080          Serve MCP over HTTP instead of stdio
  OCR_SESSION_JWT_SECRET=secret        Require HS256 bearer tokens over HTTP

Flags override environment variables.`,
		SilenceUsage:      true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE:              a.runServe,
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.flags.languages, "lang", "l", "", "language spec for initialize, e.g. tha+eng")
	f.StringVar(&a.flags.lazyLanguages, "lazy-lang", "", "language spec used when recognize creates the worker")
	f.StringVar(&a.flags.tessdata, "tessdata", "", "directory holding *.traineddata files")
	f.StringVar(&a.flags.failureMode, "failure-mode", "", "recognition failure handling: silent or return")
	f.StringVar(&a.flags.overlap, "overlap", "", "overlapping recognize calls: serialize or reject")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: info or debug")
	f.DurationVar(&a.flags.fetchTimeout, "fetch-timeout", 0, "timeout for downloading URL images")

	root.AddCommand(a.serveCmd(), a.recognizeCmd(), a.versionCmd())
	return root
}

// setup loads configuration and configures logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.getenv)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	// Logging goes to stderr; stdout carries MCP traffic and results.
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if cfg.Debug() {
		log.Printf("ocr-session %s (built %s, commit %s)", a.info.Version, a.info.BuildTime, a.info.GitCommit)
	}
	return nil
}

// applyFlags copies explicitly set flags over cfg.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("lang", &cfg.Languages, a.flags.languages)
	set("lazy-lang", &cfg.LazyLanguages, a.flags.lazyLanguages)
	set("tessdata", &cfg.TessdataPrefix, a.flags.tessdata)
	set("failure-mode", &cfg.FailureMode, a.flags.failureMode)
	set("overlap", &cfg.Overlap, a.flags.overlap)
	set("log-level", &cfg.LogLevel, a.flags.logLevel)
	set("http", &cfg.HTTPAddr, a.flags.httpAddr)
	set("jwt-secret", &cfg.JWTSecret, a.flags.jwtSecret)
	if flags.Changed("fetch-timeout") {
		cfg.FetchTimeout = a.flags.fetchTimeout
	}
}

// newSession builds a Session from the loaded configuration.
func (a *app) newSession() (*session.Session, error) {
	cfg := a.cfg
	return session.New(a.newEngine(cfg.TessdataPrefix),
		session.WithLogger(log.Default()),
		session.WithDebug(cfg.Debug()),
		session.WithLoader(imaging.NewLoader(nil, cfg.FetchTimeout)),
		session.WithFailureMode(session.FailureMode(cfg.FailureMode)),
		session.WithOverlapPolicy(session.OverlapPolicy(cfg.Overlap)),
		session.WithDefaultLanguages(cfg.Languages),
		session.WithLazyLanguages(cfg.LazyLanguages),
	)
}
