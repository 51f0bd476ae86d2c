package crawler

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"ghwiki/internal/extractor"
)

// Crawler scans a directory for source files.
type Crawler struct {
	extractor *extractor.Extractor
	logger    *slog.Logger
}

var ignoredDirs = []string{".git", "vendor", "node_modules", "testdata"}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor) *Crawler {
	return &Crawler{
		extractor: ext,
		logger:    slog.Default(),
	}
}

// WithLogger replaces the logger used to report skipped files.
func (c *Crawler) WithLogger(l *slog.Logger) *Crawler {
	c.logger = l
	return c
}

// ScanProject walks the root directory and processes all relevant files.
// Results are streamed per file through onFile in lexical walk order.
func (c *Crawler) ScanProject(ctx context.Context, root string, onFile func(*extractor.FileResult)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		result, err := c.extractor.ExtractFromFile(ctx, path)
		if err != nil {
			// Log and continue instead of failing the whole scan
			c.logger.Warn("skipping unparseable file", "path", path, "err", err)
			return nil
		}

		onFile(result)
		return nil
	})
}

// SkipDir reports whether a directory named name is left out of a scan.
func SkipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return slices.Contains(ignoredDirs, name)
}
