package renderer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"ghwiki/internal/reflection"
)

// MediaDirectory is the output sub-directory that receives copied media.
const MediaDirectory = "media"

// ErrNotOutputDirectory is returned when a directory that is about to be
// cleaned does not look like previously generated output.
var ErrNotOutputDirectory = errors.New("directory does not look like generated documentation")

type PageKind int

const (
	PageReadme PageKind = iota
	PageIndex
	PageReflection
)

// Page is one file the theme wants written.
type Page struct {
	URL        string
	Kind       PageKind
	Reflection *reflection.Reflection
}

// Theme decides page layout and contents.
type Theme interface {
	IsOutputDirectory(dir string) (bool, error)
	Pages(project *reflection.Project) []Page
	Render(project *reflection.Project, page Page) (string, error)
}

// EndEvent is passed to end hooks once every page has been written.
type EndEvent struct {
	Project         *reflection.Project
	OutputDirectory string
	Pages           []Page
}

// EndHook runs after a full render.
type EndHook func(*EndEvent) error

type endHook struct {
	priority int
	fn       EndHook
}

// Config holds renderer options.
type Config struct {
	// Media is copied into <out>/media when set.
	Media string
	// CleanOutputDir removes an existing output directory before writing,
	// provided the theme recognizes it as generated output.
	CleanOutputDir bool
	// Force skips the recognition check when cleaning.
	Force bool
}

// Renderer writes a project to disk through a theme.
type Renderer struct {
	theme  Theme
	cfg    Config
	hooks  []endHook
	logger *slog.Logger
}

// New creates a renderer for theme.
func New(theme Theme, cfg Config) *Renderer {
	return &Renderer{
		theme:  theme,
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// WithLogger replaces the renderer's logger.
func (r *Renderer) WithLogger(l *slog.Logger) *Renderer {
	r.logger = l
	return r
}

// OnEnd registers hook to run after every page has been written.
// Higher priorities run first; equal priorities run in registration order.
func (r *Renderer) OnEnd(priority int, hook EndHook) {
	r.hooks = append(r.hooks, endHook{priority: priority, fn: hook})
	sort.SliceStable(r.hooks, func(i, j int) bool {
		return r.hooks[i].priority > r.hooks[j].priority
	})
}

// Render writes every page of project into outDir, copies media and then
// fires the end hooks.
func (r *Renderer) Render(ctx context.Context, project *reflection.Project, outDir string) error {
	if err := r.PrepareOutputDirectory(outDir); err != nil {
		return err
	}

	pages := r.theme.Pages(project)
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := r.theme.Render(project, page)
		if err != nil {
			return fmt.Errorf("render %s: %w", page.URL, err)
		}
		target := filepath.Join(outDir, filepath.FromSlash(page.URL))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", page.URL, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", page.URL, err)
		}
		r.logger.Debug("page written", "url", page.URL)
	}

	if r.cfg.Media != "" {
		if err := copyDir(r.cfg.Media, filepath.Join(outDir, MediaDirectory)); err != nil {
			return fmt.Errorf("copy media: %w", err)
		}
	}

	event := &EndEvent{Project: project, OutputDirectory: outDir, Pages: pages}
	for _, h := range r.hooks {
		if err := h.fn(event); err != nil {
			return err
		}
	}
	r.logger.Info("render complete", "pages", len(pages), "out", outDir)
	return nil
}

// PrepareOutputDirectory makes sure outDir exists. With CleanOutputDir set an
// existing directory is removed first, but only once the theme has
// recognized it as generated output.
func (r *Renderer) PrepareOutputDirectory(outDir string) error {
	if r.cfg.CleanOutputDir {
		_, err := os.Stat(outDir)
		switch {
		case err == nil:
			if !r.cfg.Force {
				ok, err := r.theme.IsOutputDirectory(outDir)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: %w", outDir, ErrNotOutputDirectory)
				}
			}
			if err := os.RemoveAll(outDir); err != nil {
				return fmt.Errorf("clean output directory: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("stat output directory: %w", err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
