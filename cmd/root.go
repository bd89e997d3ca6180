package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codecritic/internal/analyzer"
	"codecritic/internal/config"
	"codecritic/internal/controller"
	"codecritic/internal/judge"
	"codecritic/internal/models"
	"codecritic/internal/report"
	"codecritic/internal/syntax"
	"codecritic/internal/watcher"
)

var (
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	verboseFlag        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codecritic [files or directories]",
	Short: "A deterministic multi-language code reviewer",
	Long: `codecritic is a static analysis pipeline that scans Python, Go,
JavaScript, TypeScript and Rust sources for structural, performance and
security problems, then aggregates everything into one scored verdict.

Examples:
  codecritic .                            # Review current directory
  codecritic api.py worker.py             # Review specific files
  codecritic --format=json .              # Output results in JSON format
  codecritic --config=.codecritic.yml .   # Use custom config
  codecritic --watch .                    # Re-review on file changes
  codecritic --generate-config            # Generate sample config file`,
	Run: runReview,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch mode for development")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")
}

func runReview(cmd *cobra.Command, args []string) {
	if generateConfigFlag {
		generateConfig()
		return
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if verboseFlag {
		cfg.Output.Verbose = true
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	logger := buildLogger(cfg.Output.Verbose)
	defer logger.Sync() //nolint:errcheck

	bundle := analyzer.NewBundle(cfg, logger)
	j := judge.New(cfg.Scoring, logger)
	ctrl := controller.New(j, logger, bundle)
	reportGen := report.NewGeneratorWithConfig(cfg)

	scan := func(paths []string) models.AggregateReport {
		units := loadSourceUnits(cfg, paths)
		if cfg.Output.Verbose {
			color.Cyan("🔍 Reviewing %d files with %d detectors (%s)...\n\n",
				len(units), bundle.DetectorCount(), strings.Join(bundle.DetectorNames(), ", "))
		} else if cfg.Output.Format != "json" {
			color.Cyan("🔍 Reviewing %d files...\n\n", len(units))
		}
		return ctrl.RunFullScan(context.Background(), units, "")
	}

	if watchFlag {
		runWatch(cfg, logger, args, func(changed []string) error {
			rep := scan(args)
			emit(cfg, reportGen, rep)
			return nil
		})
		return
	}

	rep := scan(args)
	emit(cfg, reportGen, rep)
	if rep.Verdict == models.VerdictRequestChanges {
		os.Exit(1)
	}
}

func emit(cfg *config.Config, gen *report.Generator, rep models.AggregateReport) {
	out := gen.Generate(&rep)
	if cfg.Output.OutputFile != "" {
		if err := writeReportToFile(out, cfg.Output.OutputFile); err != nil {
			color.Red("Failed to write report to file: %v\n", err)
		} else {
			color.Green("📄 Report saved to: %s\n", cfg.Output.OutputFile)
		}
		return
	}
	fmt.Print(out)
}

func runWatch(cfg *config.Config, logger *zap.Logger, paths []string, handler watcher.FileChangeHandler) {
	fw, err := watcher.NewFileWatcher(cfg, logger)
	if err != nil {
		color.Red("Failed to start watch mode: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	if err := fw.Watch(paths, handler); err != nil {
		color.Red("Failed to watch paths: %v\n", err)
		os.Exit(1)
	}
	color.Cyan("👀 Watching %d directories for changes (Ctrl+C to stop)...\n", len(fw.GetWatchedPaths()))

	// Run once up front so the first report does not wait for an edit.
	if err := handler(nil); err != nil {
		logger.Warn("initial scan failed", zap.Error(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func buildLogger(verbose bool) *zap.Logger {
	logCfg := zap.NewDevelopmentConfig()
	if !verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadSourceUnits collects, reads and language-tags every analyzable file
// under the given paths. Unreadable files are skipped with a warning.
func loadSourceUnits(cfg *config.Config, paths []string) []models.SourceUnit {
	var units []models.SourceUnit
	for _, path := range paths {
		files, err := collectFiles(cfg, path)
		if err != nil {
			color.Red("Error collecting files from %s: %v\n", path, err)
			continue
		}
		for _, file := range files {
			content, err := os.ReadFile(file)
			if err != nil {
				color.Yellow("⚠️  Skipping unreadable file %s: %v\n", file, err)
				continue
			}
			units = append(units, syntax.NewSourceUnit(file, string(content)))
		}
	}
	return units
}

// collectFiles recursively finds analyzable files under the given path.
func collectFiles(cfg *config.Config, path string) ([]string, error) {
	extensions := make(map[string]bool, len(cfg.Files.Extensions))
	for _, ext := range cfg.Files.Extensions {
		extensions[ext] = true
	}

	var files []string
	err := filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if name == "vendor" || name == ".git" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensions[filepath.Ext(filePath)] {
			return nil
		}
		if !cfg.Files.IncludeTests && isTestFile(filePath) {
			return nil
		}
		if cfg.Files.MaxFileSize > 0 && info.Size() > int64(cfg.Files.MaxFileSize)*1024 {
			return nil
		}
		files = append(files, filePath)
		return nil
	})
	return files, err
}

func isTestFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, "_test.go") ||
		strings.HasPrefix(name, "test_") ||
		strings.Contains(name, ".test.") ||
		strings.Contains(name, ".spec.")
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, []byte(report), 0644)
}

func generateConfig() {
	configPath := ".codecritic.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize codecritic behavior\n")
	color.Cyan("🚀 Run 'codecritic --config=%s .' to use it\n", configPath)
}
