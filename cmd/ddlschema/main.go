package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tordrt/ddlschema"
	"github.com/tordrt/ddlschema/internal/config"
	"github.com/tordrt/ddlschema/internal/formatter"
)

var (
	format     string
	outputFile string
	outputDir  string
	tables     string
	exclude    string
	noInfer    bool
	catalogURL string
	colorMode  string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:          "ddlschema [file...]",
	Short:        "Build a schema model from SQL DDL",
	Long:         `ddlschema reads SQL DDL scripts from files or stdin, builds a model of their tables, columns, relationships, indexes and constraints, and prints it as JSON, YAML, text, markdown or DDL.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&format, "format", "f", formatter.FormatJSON, "Output format: "+strings.Join(formatter.Formats(), ", "))
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output (text or markdown)")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	rootCmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Tables to leave out (comma-separated, optional)")
	rootCmd.Flags().BoolVar(&noInfer, "no-infer", false, "Skip relationship inference from <name>_id columns")
	rootCmd.Flags().StringVar(&catalogURL, "catalog-url", "", "Also export the model to a catalog database (postgres://, mysql://, sqlite://)")
	rootCmd.Flags().StringVar(&colorMode, "color", config.ColorAuto, "Color output: auto, always or never")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/ddlschema/config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()

	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	docs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	s, err := ddlschema.ParseDocuments(ctx, docs, &ddlschema.Options{
		SkipInference: cfg.SkipInference,
		Logger:        newLogger(verbose, stderr),
	})
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}

	s, missing := ddlschema.FilterSchema(s, cfg.Tables, cfg.ExcludeTables)
	for _, m := range missing {
		if m.Suggestion != "" {
			fmt.Fprintf(stderr, "warning: table %q not found (did you mean %q?)\n", m.Name, m.Suggestion)
		} else {
			fmt.Fprintf(stderr, "warning: table %q not found\n", m.Name)
		}
	}

	if cfg.Catalog.URL != "" {
		runID, err := ddlschema.ExportSchema(ctx, s, cfg.Catalog.URL)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "exported run %s\n", runID)
	}

	// Multi-file output
	if outputDir != "" {
		outFormat := cfg.Format
		if outFormat == formatter.FormatJSON && !cmd.Flags().Changed("format") {
			outFormat = formatter.FormatText
		}
		if err := ddlschema.FormatSchema(s, &ddlschema.OutputOptions{OutputDir: outputDir, Format: outFormat}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	// Single-stream output
	writer := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	err = ddlschema.FormatSchema(s, &ddlschema.OutputOptions{
		Writer: writer,
		Format: cfg.Format,
		Color:  resolveColor(cfg.Color, writer),
	})
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// loadConfig layers the config file, the environment and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, fmt.Errorf("failed to load config: %w", statErr)
		}
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("tables") {
		cfg.Tables = parseTableList(tables)
	}
	if flags.Changed("exclude") {
		cfg.ExcludeTables = parseTableList(exclude)
	}
	if flags.Changed("no-infer") {
		cfg.SkipInference = noInfer
	}
	if flags.Changed("catalog-url") {
		cfg.Catalog.URL = catalogURL
	}
	if flags.Changed("color") {
		cfg.Color = strings.ToLower(colorMode)
	}
	return cfg, cfg.Validate()
}

// readInputs reads the named files in order, reading stdin for "-" or when
// no files are given. Each input stays a separate document.
func readInputs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	docs := make([]string, 0, len(args))
	for _, arg := range args {
		var data []byte
		var err error
		if arg == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		docs = append(docs, string(data))
	}
	return docs, nil
}

func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	var list []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			list = append(list, t)
		}
	}
	return list
}

// resolveColor decides whether to style output written to w
func resolveColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
