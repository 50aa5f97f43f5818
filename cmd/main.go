package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mcq-baseline/internal/config"
	"mcq-baseline/internal/imaging"
	"mcq-baseline/internal/logger"
	"mcq-baseline/internal/pipeline"
	"mcq-baseline/internal/report"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiGray  = "\x1b[90m"
)

var useANSI = detectANSI()

func main() {
	defer func() {
		if r := recover(); r != nil {
			printErrorf("Unexpected error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := run(); err != nil {
		printErrorf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Optional YAML run file")
	inputPath := flag.String("input", "", "Path to the input JSON collection")
	inputShort := flag.String("i", "", "Shorthand for -input")
	outputPath := flag.String("output", "", "Path to the output JSON document")
	outputShort := flag.String("o", "", "Shorthand for -output")
	reportPath := flag.String("report", "", "Optional run report path (.md or .html)")
	workers := flag.Int("workers", 0, "Number of concurrent record workers (output order is always preserved)")
	stripHTML := flag.Bool("strip-html", false, "Flatten HTML markup in question text before extraction")
	quiet := flag.Bool("quiet", false, "Disable the progress bar")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	applyFlags(&cfg, *inputPath, *inputShort, *outputPath, *outputShort, *reportPath, *workers, *stripHTML, *quiet)

	if *debug {
		cfg.LogLevel = "debug"
	}
	logg := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	printBanner()
	printInfof("Reading %s...\n", cfg.InputPath)

	items, err := pipeline.LoadRecords(cfg.InputPath)
	if err != nil {
		return err
	}
	printInfof("Loaded %d record(s).\n", len(items))

	runner := &pipeline.Runner{
		Processor: &pipeline.Processor{
			Decoder:   imaging.NewDecoder(),
			StripHTML: cfg.StripHTML,
		},
		Workers: cfg.Workers,
		Quiet:   cfg.Quiet,
		Log:     logg,
	}

	start := time.Now()
	results, stats := runner.Run(items)
	elapsed := time.Since(start)

	if err := pipeline.WriteResults(cfg.OutputPath, results); err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		sum := report.Summary{
			InputPath:  cfg.InputPath,
			OutputPath: cfg.OutputPath,
			Elapsed:    elapsed,
			Results:    results,
			Stats:      stats,
		}
		if err := report.Write(cfg.ReportPath, sum); err != nil {
			return err
		}
		printSuccessf("Saved report: %s\n", cfg.ReportPath)
	}

	printSuccessf("Answered %d of %d record(s) in %s.\n", stats.Answered(), stats.Total, timeLabel(elapsed))
	if stats.Failed > 0 || stats.Dropped > 0 {
		printInfof("%d record(s) failed (empty answer emitted), %d dropped without a resolvable id.\n",
			stats.Failed, stats.Dropped)
	}
	printSuccessf("Saved output: %s\n", cfg.OutputPath)
	return nil
}

// applyFlags overlays explicitly provided flags on the config; flags win
// over the YAML file and the environment.
func applyFlags(cfg *config.Config, input, inputShort, output, outputShort, reportPath string, workers int, stripHTML, quiet bool) {
	if inputShort != "" {
		cfg.InputPath = inputShort
	}
	if input != "" {
		cfg.InputPath = input
	}
	if outputShort != "" {
		cfg.OutputPath = outputShort
	}
	if output != "" {
		cfg.OutputPath = output
	}
	if reportPath != "" {
		cfg.ReportPath = reportPath
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if stripHTML {
		cfg.StripHTML = true
	}
	if quiet {
		cfg.Quiet = true
	}
}

func printBanner() {
	fmt.Println(style(strings.Repeat("=", 64), ansiGray))
	fmt.Println(style(" MCQ Baseline - Batch Answer Selector", ansiBold+ansiCyan))
	fmt.Println(style(strings.Repeat("=", 64), ansiGray))
	fmt.Println()
}

func printInfof(format string, args ...any) {
	fmt.Printf(style("[INFO] ", ansiCyan)+format, args...)
}

func printSuccessf(format string, args ...any) {
	fmt.Printf(style("[OK] ", ansiGreen)+format, args...)
}

func printErrorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, style("[ERROR] ", ansiRed)+format, args...)
}

func style(text string, code string) string {
	if !useANSI || text == "" {
		return text
	}
	return code + text + ansiReset
}

func detectANSI() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("NO_COLOR")), "1") {
		return false
	}
	term := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return term != "dumb"
}

func timeLabel(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
