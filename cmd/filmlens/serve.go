package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/filmlens/filmlens/pkg/config"
	"github.com/filmlens/filmlens/pkg/export"
	"github.com/filmlens/filmlens/pkg/memo"
	"github.com/filmlens/filmlens/pkg/pipeline"
	"github.com/filmlens/filmlens/pkg/server"
	"github.com/filmlens/filmlens/pkg/telemetry"
	"github.com/filmlens/filmlens/pkg/tui"
	"github.com/filmlens/filmlens/pkg/watch"
)

// Serve flags
var (
	servePort int
	serveHost string
)

// Watch flags
var (
	watchDir    string
	watchOutDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	Long: `Start the HTTP API serving uploads, cleaned tables, analytics
and campaign recommendations.

Examples:
  filmlens serve
  filmlens serve --port 9000
  FILMLENS_MEMO_BACKEND=redis filmlens serve`,
	RunE: runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and clean datasets as they arrive",
	Long: `Watch a drop directory for CSV and XLSX files and write the
cleaned table for each new or changed file.

Examples:
  filmlens watch -d ./incoming -o ./cleaned`,
	RunE: runWatch,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")

	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "Directory to watch (overrides config)")
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "Output directory for cleaned files (overrides config)")
}

// newMemo builds the memo from config, falling back to the in-process
// backend when redis is unreachable.
func newMemo(cfg *config.Config) *memo.Memo {
	if cfg.Memo.Backend == "redis" {
		rcfg := memo.DefaultRedisConfig(cfg.Memo.Redis.Address)
		rcfg.Password = cfg.Memo.Redis.Password
		rcfg.Database = cfg.Memo.Redis.Database
		if cfg.Memo.Redis.Prefix != "" {
			rcfg.Prefix = cfg.Memo.Redis.Prefix
		}
		if cfg.Memo.TTL > 0 {
			rcfg.TTL = cfg.Memo.TTL
		}

		backend, err := memo.NewRedisBackend(rcfg)
		if err == nil {
			return memo.New(backend)
		}
		fmt.Fprintf(os.Stderr, "warning: redis memo unavailable (%v), using in-process cache\n", err)
	}
	return memo.New(memo.NewLRUBackend(cfg.Memo.Capacity))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Global().Get()
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Telemetry.Enabled {
		otlpCfg := telemetry.DefaultOTLPConfig("filmlens")
		otlpCfg.ServiceVersion = version
		if cfg.Telemetry.Endpoint != "" {
			otlpCfg.Endpoint = cfg.Telemetry.Endpoint
		}
		shutdown, err := telemetry.InitOTLP(otlpCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: telemetry disabled: %v\n", err)
		} else {
			defer func() {
				shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
				defer c()
				shutdown(shutdownCtx)
			}()
		}
	}

	srv := server.NewServer(cfg.Server, newMemo(cfg))

	fmt.Print(tui.Header(version))
	fmt.Printf("  Listening on http://%s:%d\n\n", cfg.Server.Host, cfg.Server.Port)

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Global().Get()
	if watchDir != "" {
		cfg.Watch.Dir = watchDir
	}
	if watchOutDir != "" {
		cfg.Watch.OutDir = watchOutDir
	}

	if err := os.MkdirAll(cfg.Watch.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	w, err := watch.NewWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	w.OnChange = func(path string) error {
		return cleanDrop(ctx, path, cfg.Watch.OutDir)
	}
	w.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error (%s): %v\n", path, err)
	}

	if err := w.WatchDir(cfg.Watch.Dir); err != nil {
		return err
	}

	fmt.Print(tui.Header(version))
	fmt.Printf("  Watching %s → %s\n\n", cfg.Watch.Dir, cfg.Watch.OutDir)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// cleanDrop cleans one dropped file and writes the result next to it.
func cleanDrop(ctx context.Context, path, outDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	table, summary, err := pipeline.Prepare(ctx, data, path)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+"_cleaned.csv")

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.WriteCSV(out, table); err != nil {
		return err
	}

	fmt.Printf("  %s: %d → %d rows (removed %d) → %s\n",
		filepath.Base(path), summary.OriginalRows, summary.FinalRows,
		summary.RemovedRows, outPath)
	return nil
}
