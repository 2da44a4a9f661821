package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/hedgewatch/internal/patterns"
	"github.com/ppiankov/hedgewatch/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	inPath       string
	outPath      string
	patternsPath string
	inFormat     string
	textField    string
	idField      string
	threshold    float64
	workers      int
	rateLimit    float64
)

func init() {
	f := rootCmd.Flags()

	// I/O flags
	f.StringVar(&inPath, "in", "-", "input file path or '-' for STDIN (text or JSONL)")
	f.StringVar(&outPath, "out", "-", "output path or '-' for STDOUT (JSONL)")
	f.StringVar(&inFormat, "format", pipeline.FormatAuto, "input format (auto, text, jsonl, html; html is never auto-detected)")

	// Pattern library flags
	f.StringVar(&patternsPath, "patterns", "plausible_deniability_patterns.json", "pattern library path (JSON or YAML)")
	f.Float64Var(&threshold, "threshold", 0, "score threshold (default: pattern library meta.default_threshold)")

	// JSONL flags
	f.StringVar(&textField, "text-field", "text", "JSONL field containing the document text")
	f.StringVar(&idField, "id-field", "doc_id", "JSONL field containing the document ID")

	// Throughput flags
	f.IntVar(&workers, "workers", 1, "parallel workers for JSONL input (output keeps input line order)")
	f.Float64Var(&rateLimit, "rate", 0, "max output records per second (0 = unlimited)")

	_ = viper.BindPFlag("patterns", f.Lookup("patterns"))
	_ = viper.BindPFlag("workers", f.Lookup("workers"))
}

func runDetect(cmd *cobra.Command, args []string) (err error) {
	// Viper resolves flag > env > config file > default for the bound keys
	patPath := viper.GetString("patterns")
	nWorkers := viper.GetInt("workers")

	lib, err := patterns.Load(patPath)
	if err != nil {
		return err
	}
	cfg, err := patterns.Compile(lib)
	if err != nil {
		return err
	}

	active := cfg.DefaultThreshold
	if cmd.Flags().Changed("threshold") {
		active = threshold
	}

	in := io.Reader(os.Stdin)
	if inPath != "-" {
		fh, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = fh.Close() }()
		in = fh
	}

	out := io.Writer(os.Stdout)
	if outPath != "-" {
		fh, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := fh.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = fh
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Patterns: %s (%d patterns, threshold %.2f)\n", patPath, len(cfg.Patterns), active)
		if nWorkers > 1 {
			fmt.Fprintf(os.Stderr, "Workers: %d\n", nWorkers)
		}
	}

	p := pipeline.New(cfg, pipeline.Options{
		Source:    inPath,
		Format:    inFormat,
		TextField: textField,
		IDField:   idField,
		Threshold: active,
		Workers:   nWorkers,
		Rate:      rateLimit,
	})

	stats, err := p.Run(cmd.Context(), in, out)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %s input: %d document(s), %d flagged sentence(s)\n",
			stats.Format, stats.Documents, stats.Records)
	}
	return nil
}
