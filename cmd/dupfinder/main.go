package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/razakaze/duplicate-finder/internal/analyzer"
	"github.com/razakaze/duplicate-finder/internal/config"
	"github.com/razakaze/duplicate-finder/internal/engine"
	"github.com/razakaze/duplicate-finder/internal/progress"
	"github.com/razakaze/duplicate-finder/internal/report"
	"github.com/razakaze/duplicate-finder/internal/task"
	"github.com/razakaze/duplicate-finder/internal/ui"
)

var (
	Version   = "1.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath string
	outputDir  string
	formats    []string
	plain      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dupfinder",
	Short: "Find duplicate files across directory trees",
	Long: `dupfinder compares two or three directory trees, finds files that share
a name across trees, and reports which are byte-identical duplicates and
which have diverged, along with the disk space you could reclaim.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
}

var scanCmd = &cobra.Command{
	Use:   "scan [directory...]",
	Short: "Scan 2-3 directories for duplicate files",
	Long: `Scans the given directories (or the roots from the config file when no
arguments are given), compares same-named files by content, and prints a
summary. Report files are written for each requested format.`,
	Args: cobra.MaximumNArgs(engine.MaxRoots),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		roots := args
		if len(roots) == 0 {
			roots = cfg.Roots
		}
		if _, err := engine.ValidateRoots(roots); err != nil {
			return err
		}

		if cmd.Flags().Changed("output") {
			cfg.ReportDir = outputDir
		}
		if cmd.Flags().Changed("report") {
			cfg.ReportFormats = formats
		}
		reportDir := cfg.ReportDir
		if reportDir == "" {
			if reportDir, err = os.Getwd(); err != nil {
				return err
			}
		}

		tracker := progress.NewTracker()
		eng := engine.New(roots, tracker)

		var result *analyzer.ScanResult
		if plain {
			result, err = runPlain(eng, tracker, cfg)
		} else {
			result, err = runTUI(eng, tracker)
		}
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("Scan cancelled.")
			return nil
		}

		if plain {
			report.WriteSummary(os.Stdout, result)
		}
		return writeReports(result, reportDir, cfg.ReportFormats)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureConfigExists()
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Printf("Config file: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	scanCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for report files")
	scanCmd.Flags().StringSliceVarP(&formats, "report", "r", nil, "report formats to write (csv, json, yaml)")
	scanCmd.Flags().BoolVar(&plain, "plain", false, "plain line-based output instead of the interactive UI")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(initCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// runTUI drives a scan behind the interactive bubbletea front end. The
// worker's single completion or error signal is forwarded into the
// program's message queue.
func runTUI(eng *engine.Engine, tracker *progress.Tracker) (*analyzer.ScanResult, error) {
	var handle *task.Handle[*analyzer.ScanResult]

	m := ui.New(tracker, func() {
		if handle != nil {
			handle.Cancel()
		}
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	var result *analyzer.ScanResult
	handle = task.Start(eng.Run,
		func(res *analyzer.ScanResult) {
			result = res
			p.Send(ui.DoneMsg{Result: res})
		},
		func(err error) {
			p.Send(ui.ErrMsg{Err: err})
		})

	final, err := p.Run()
	if err != nil {
		handle.Cancel()
		return nil, err
	}
	if fm, ok := final.(ui.Model); ok {
		if ferr := fm.Err(); ferr != nil {
			return nil, ferr
		}
	}
	return result, nil
}

// runPlain drives a scan with a single status line refreshed at the
// configured poll interval. Ctrl-C requests cooperative cancellation.
func runPlain(eng *engine.Engine, tracker *progress.Tracker, cfg *config.Config) (*analyzer.ScanResult, error) {
	interval := time.Duration(cfg.PollIntervalMs) * time.Millisecond

	var (
		result *analyzer.ScanResult
		runErr error
	)
	done := make(chan struct{})
	handle := task.Start(eng.Run,
		func(res *analyzer.ScanResult) {
			result = res
			close(done)
		},
		func(err error) {
			runErr = err
			close(done)
		})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for waiting := true; waiting; {
		select {
		case <-done:
			waiting = false
		case <-sigCh:
			handle.Cancel()
		case <-ticker.C:
			fmt.Printf("\r\033[K%s", progress.FormatStatus(tracker.Snapshot()))
		}
	}
	fmt.Println()

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func writeReports(result *analyzer.ScanResult, dir string, formats []string) error {
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case config.FormatCSV:
			path, err = report.WriteCSV(result, dir)
		case config.FormatJSON:
			path, err = report.WriteJSON(result, dir)
		case config.FormatYAML:
			path, err = report.WriteYAML(result, dir)
		default:
			err = fmt.Errorf("unknown report format: %s", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Report written: %s\n", path)
	}
	return nil
}
