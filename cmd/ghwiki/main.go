package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ghwiki/internal/config"
	"ghwiki/internal/crawler"
	"ghwiki/internal/extractor"
	"ghwiki/internal/reflection"
	"ghwiki/internal/renderer"
	"ghwiki/internal/storage"
	"ghwiki/internal/theme"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 300 * time.Millisecond

var (
	rootCmd = &cobra.Command{
		Use:   "ghwiki",
		Short: "Generate GitHub wiki pages and a sidebar from Go sources",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	configPath string
	dbPath     string
	verbose    bool
	logger     = slog.Default()

	fromDB bool
	force  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ghwiki.yaml", "Path to the project configuration")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "ghwiki.db", "Path to the reflection snapshot database (SQLite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	generateCmd.Flags().BoolVar(&fromDB, "from-db", false, "Render the last scanned snapshot instead of re-extracting")
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "Clean the output directory even if it does not look generated")
	watchCmd.Flags().BoolVarP(&force, "force", "f", false, "Clean the output directory even if it does not look generated")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(checkCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}
	return cfg
}

// buildProject extracts the configured entry points into a project.
func buildProject(ctx context.Context, cfg *config.Config) (*reflection.Project, error) {
	ext, err := extractor.NewExtractor("go")
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	b := reflection.NewBuilder(crawler.NewCrawler(ext).WithLogger(logger)).WithLogger(logger)
	project, err := b.Build(ctx, cfg.Project.Name, cfg.Project.EntryPoints)
	if err != nil {
		return nil, err
	}

	project.Readme, err = cfg.ReadReadme()
	if err != nil {
		return nil, fmt.Errorf("failed to read readme: %w", err)
	}
	return project, nil
}

// renderProject writes the wiki pages and the sidebar.
func renderProject(ctx context.Context, cfg *config.Config, project *reflection.Project) error {
	wiki := theme.NewWikiTheme(cfg.ThemeOptions())
	r := renderer.New(wiki, renderer.Config{
		Media:          cfg.Project.Media,
		CleanOutputDir: cfg.Output.Clean,
		Force:          force,
	}).WithLogger(logger)
	wiki.Register(r)
	return r.Render(ctx, project, cfg.Output.Dir)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Extract the configured entry points and save a snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		fmt.Printf("📂 Scanning entry points: %s\n", strings.Join(cfg.Project.EntryPoints, ", "))
		start := time.Now()
		project, err := buildProject(ctx, cfg)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("✅ Extracted %d reflections in %v.\n", project.Len()-1, time.Since(start))

		store, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()

		fmt.Println("💾 Saving snapshot...")
		if err := store.SaveProject(ctx, project); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("🎉 Scan complete! Database: %s\n", dbPath)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the wiki pages and _Sidebar.md",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		var project *reflection.Project
		if fromDB {
			store, err := storage.NewSQLiteStore(dbPath)
			if err != nil {
				log.Fatalf("Failed to initialize database: %v", err)
			}
			defer store.Close()

			fmt.Println("🔄 Loading snapshot...")
			project, err = store.LoadProject(ctx)
			if errors.Is(err, storage.ErrNoSnapshot) {
				log.Fatalf("No snapshot in %s, run 'ghwiki scan' first", dbPath)
			}
			if err != nil {
				log.Fatalf("Failed to load snapshot: %v", err)
			}
		} else {
			var err error
			fmt.Println("🚀 Extracting sources...")
			project, err = buildProject(ctx, cfg)
			if err != nil {
				log.Fatalf("Extraction failed: %v", err)
			}
		}

		if err := renderProject(ctx, cfg, project); err != nil {
			if errors.Is(err, renderer.ErrNotOutputDirectory) {
				log.Fatalf("Refusing to clean %s: %v (use --force to override)", cfg.Output.Dir, err)
			}
			log.Fatalf("Failed to render wiki: %v", err)
		}
		fmt.Printf("✅ Wiki generated in '%s'.\n", cfg.Output.Dir)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the wiki whenever a Go source changes",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cfg := loadConfig()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}
		defer watcher.Close()

		for _, ep := range cfg.Project.EntryPoints {
			if err := watchTree(watcher, ep); err != nil {
				log.Fatalf("Failed to watch %s: %v", ep, err)
			}
		}

		rebuild := func() {
			start := time.Now()
			project, err := buildProject(ctx, cfg)
			if err == nil {
				err = renderProject(ctx, cfg, project)
			}
			if err != nil {
				fmt.Printf("⚠️  Rebuild failed: %v\n", err)
				return
			}
			fmt.Printf("✅ Wiki regenerated in %v.\n", time.Since(start))
		}

		rebuild()
		fmt.Printf("👀 Watching %s (Ctrl+C to stop)\n", strings.Join(cfg.Project.EntryPoints, ", "))

		// Rebuilds run on this goroutine only; the timer just signals.
		debounce := time.NewTimer(watchDebounce)
		debounce.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println("👋 Stopped watching.")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := watchTree(watcher, event.Name); err != nil {
							logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
						}
						continue
					}
				}
				if !isSourceChange(event) {
					continue
				}
				logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
				debounce.Reset(watchDebounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)
			case <-debounce.C:
				rebuild()
			}
		}
	},
}

// watchTree adds root and its sub-directories, skipping the ones the crawler skips.
func watchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && crawler.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func isSourceChange(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".go") || strings.HasSuffix(event.Name, "_test.go") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report whether a directory holds generated wiki output",
	Long: `Report whether a directory holds generated wiki output.

Only the entry document, the globals page (Exports.md or Modules.md), media,
.DS_Store, _Sidebar.md and names starting with Class, Enumeration, Interface,
Module or Namespace are recognized. Wiki pages are named after the full
symbol name (pkg.Type.md), so a directory ghwiki wrote itself is usually
reported as foreign: cleaning it with output.clean needs --force.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		dir := cfg.Output.Dir
		if len(args) > 0 {
			dir = args[0]
		}

		wiki := theme.NewWikiTheme(cfg.ThemeOptions())
		ok, err := wiki.IsOutputDirectory(dir)
		if err != nil {
			log.Fatalf("Failed to inspect %s: %v", dir, err)
		}
		if !ok {
			fmt.Printf("❌ %s contains files ghwiki did not generate; cleaning it requires --force.\n", dir)
			os.Exit(1)
		}
		fmt.Printf("✅ %s looks like generated output (globals file: %s).\n", dir, wiki.GlobalsFile())
	},
}
