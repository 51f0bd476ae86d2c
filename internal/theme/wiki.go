package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"ghwiki/internal/navigation"
	"ghwiki/internal/reflection"
	"ghwiki/internal/renderer"
)

const (
	// SidebarFile is the page GitHub wikis render as the sidebar.
	SidebarFile = "_Sidebar.md"
	// SidebarPriority is the end hook priority of the sidebar writer.
	SidebarPriority = 1024

	WikiEntryDocument = "Home.md"
	multiEntryGlobals = "Modules.md"
	singleEntryGlobal = "Exports.md"
)

// allowedSections are the navigation labels that make it into the sidebar.
// Every other label is dropped together with its children.
var allowedSections = []string{"Home", "Modules", "Namespaces"}

var generatedPagePattern = regexp.MustCompile(`^Class|^Enumeration|^Interface|^Module|^Namespace`)

// WikiTheme lays pages out flat, one file per fully qualified name, and
// writes a _Sidebar.md once rendering finishes.
type WikiTheme struct {
	*MarkdownTheme
}

// NewWikiTheme creates the wiki theme. The entry document defaults to Home.md.
func NewWikiTheme(opts Options) *WikiTheme {
	if opts.EntryDocument == "" {
		opts.EntryDocument = WikiEntryDocument
	}
	t := &WikiTheme{MarkdownTheme: NewMarkdownTheme(opts)}
	t.scheme = t
	return t
}

// Register hooks the sidebar writer into r.
func (t *WikiTheme) Register(r *renderer.Renderer) {
	r.OnEnd(SidebarPriority, t.WriteSidebar)
}

// URL is the page of a reflection: "<full name>.md".
func (t *WikiTheme) URL(r *reflection.Reflection) string {
	return r.FullName() + ".md"
}

// GlobalsFile names the exports listing page.
func (t *WikiTheme) GlobalsFile() string {
	if len(t.opts.EntryPoints) > 1 {
		return multiEntryGlobals
	}
	return singleEntryGlobal
}

// Link drops the page suffix; wiki pages are addressed by name.
func (t *WikiTheme) Link(from, to string) string {
	return strings.TrimSuffix(to, pageSuffix)
}

// AllowedDirectoryListings are the exact names expected in generated output.
func (t *WikiTheme) AllowedDirectoryListings() []string {
	return []string{
		t.opts.EntryDocument,
		t.GlobalsFile(),
		renderer.MediaDirectory,
		".DS_Store",
		SidebarFile,
	}
}

// IsOutputDirectory reports whether every entry of dir is either an allowed
// listing or a generated page name. Only names are inspected.
func (t *WikiTheme) IsOutputDirectory(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read output directory: %w", err)
	}
	allowed := t.AllowedDirectoryListings()
	for _, e := range entries {
		name := e.Name()
		if !slices.Contains(allowed, name) && !generatedPagePattern.MatchString(name) {
			return false, nil
		}
	}
	return true, nil
}

// WriteSidebar writes _Sidebar.md into the output directory, replacing any
// previous content.
func (t *WikiTheme) WriteSidebar(event *renderer.EndEvent) error {
	nav := t.Navigation(event.Project)
	content := t.Sidebar(event.Project.Name(), nav)
	target := filepath.Join(event.OutputDirectory, SidebarFile)
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write sidebar: %w", err)
	}
	return nil
}

// Sidebar flattens nav into the sidebar Markdown.
func (t *WikiTheme) Sidebar(projectName string, nav *navigation.Item) string {
	lines := []string{fmt.Sprintf("## %s\n", projectName)}

	for _, item := range nav.Children {
		if item.IsLabel && !slices.Contains(allowedSections, item.Title) {
			continue
		}
		if item.IsLabel {
			lines = append(lines, fmt.Sprintf("\n### %s\n", item.Title))
			for _, child := range item.Children {
				segments := strings.Split(child.Title, ".")
				lines = append(lines, fmt.Sprintf("- [%s](%s)", segments[len(segments)-1], ParseURL(EncodeURI(child.URL))))
			}
			continue
		}
		title := item.Title
		if item.URL == t.opts.EntryDocument {
			title = "Home"
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s)", title, ParseURL(item.URL)))
	}

	return strings.Join(lines, "\n") + "\n"
}
