// FilmLens - Film viewing analytics and campaign planner.
// Cleans CSV and XLSX viewing datasets and derives campaign insights.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/filmlens/filmlens/pkg/analytics"
	"github.com/filmlens/filmlens/pkg/export"
	"github.com/filmlens/filmlens/pkg/parser"
	"github.com/filmlens/filmlens/pkg/pipeline"
	"github.com/filmlens/filmlens/pkg/tui"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	inputFile  string
	outputFile string
	formatFlag string
	monthFlag  string
	topNFlag   int
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filmlens",
	Short: "FilmLens - Film viewing analytics and campaign planner",
	Long: `FilmLens cleans film viewing datasets (CSV, XLSX) and derives
engagement analytics and December campaign recommendations.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Clean a dataset and write the prepared table",
	Long: `Clean a film viewing dataset and write the prepared table.

Coerces dates and numerics, drops future-dated and duplicate rows,
and appends derived engagement features.

Examples:
  filmlens prepare -i views.csv -o cleaned.csv
  filmlens prepare -i views.xlsx -o cleaned.xlsx`,
	RunE: runPrepare,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the analytics report for a dataset",
	Long: `Clean a dataset and render the full analytics report: overview,
distributions, performance quadrants and campaign recommendations.

Examples:
  filmlens report -i views.csv
  filmlens report -i views.csv --month December --top 5`,
	RunE: runReport,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about a dataset file",
	Long:  `Detect the format of a dataset file and display its raw dimensions.`,
	RunE:  runInfo,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	prepareCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	prepareCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	prepareCmd.MarkFlagRequired("input")
	prepareCmd.MarkFlagRequired("output")

	reportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	reportCmd.Flags().StringVar(&monthFlag, "month", "December", "Campaign month for insights")
	reportCmd.Flags().IntVar(&topNFlag, "top", 10, "Number of entries in top-N listings")
	reportCmd.MarkFlagRequired("input")

	infoCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file path (required)")
	infoCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format (csv, xlsx) - auto-detected if not specified")
	infoCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()
	return ctx, cancel
}

func runPrepare(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	bar := tui.NewProgressBar(-1, "cleaning "+filepath.Base(inputFile))
	table, summary, err := pipeline.Prepare(ctx, data, inputFile)
	bar.Finish()
	if err != nil {
		return err
	}

	format := export.FormatCSV
	if strings.EqualFold(filepath.Ext(outputFile), ".xlsx") {
		format = export.FormatXLSX
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	if err := export.Write(out, table, format); err != nil {
		return err
	}

	fmt.Print(tui.Summary(summary))
	if verbose {
		fmt.Printf("  Output: %s (%s)\n", outputFile, format)
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	table, summary, err := pipeline.Prepare(ctx, data, inputFile)
	if err != nil {
		return err
	}

	fmt.Print(tui.Header(version))
	fmt.Print(tui.Summary(summary))

	overview := analytics.ComputeOverview(table)
	fmt.Print(tui.Overview(&overview))

	fmt.Print(tui.Distribution("avg rating by category", analytics.AvgRatingByCategory(table)))
	fmt.Print(tui.Distribution("avg engagement by category", analytics.AvgEngagementByCategory(table)))
	fmt.Print(tui.Quadrants(analytics.Quadrants(table)))

	ins := analytics.InsightsForMonth(table, monthFlag)
	if len(ins.CategoryMix) > 0 {
		fmt.Print(tui.Distribution(monthFlag+" content mix (%)", ins.CategoryMix))
	}
	fmt.Print(tui.Recommendations(analytics.Recommendations(table)))
	fmt.Print(tui.Calendar(analytics.MarketingCalendar(ins.TopCategory)))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	format := parser.DetectFormat(inputFile)
	if formatFlag != "" {
		format = parser.ParseFormat(formatFlag)
	}
	if format == parser.FormatUnknown {
		return fmt.Errorf("unable to detect input format, please specify with --format")
	}

	p, err := parser.NewParser(format)
	if err != nil {
		return err
	}
	raw, err := p.Parse(data)
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", inputFile)
	fmt.Printf("Size:    %d bytes\n", len(data))
	fmt.Printf("Format:  %s\n", format)
	fmt.Printf("Rows:    %d\n", len(raw.Rows))
	fmt.Printf("Columns: %d\n", len(raw.Columns))
	if verbose {
		fmt.Printf("Header:  %s\n", strings.Join(raw.Columns, ", "))
	}
	return nil
}
