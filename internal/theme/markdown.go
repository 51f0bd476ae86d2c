package theme

import (
	"fmt"
	"os"
	"path"
	"strings"

	"ghwiki/internal/navigation"
	"ghwiki/internal/reflection"
	"ghwiki/internal/renderer"
)

const (
	DefaultEntryDocument = "README.md"
	DefaultGlobalsFile   = "modules.md"
)

// Options are the theme settings supplied by the host configuration.
type Options struct {
	EntryPoints   []string
	EntryDocument string
	// Readme is the readme path, or navigation.ReadmeNone.
	Readme string
}

func (o Options) hasReadme() bool {
	return navigation.Options{Readme: o.Readme}.HasReadme()
}

// urlScheme is the part of a theme a derived theme overrides.
type urlScheme interface {
	URL(r *reflection.Reflection) string
	GlobalsFile() string
	Link(from, to string) string
}

var kindDirectories = map[reflection.Kind]string{
	reflection.KindModule:      "modules",
	reflection.KindNamespace:   "modules",
	reflection.KindEnumeration: "enums",
	reflection.KindClass:       "classes",
	reflection.KindInterface:   "interfaces",
}

// memberGroups is the order member sections appear on a page.
var memberGroups = []reflection.Kind{
	reflection.KindModule,
	reflection.KindNamespace,
	reflection.KindEnumeration,
	reflection.KindClass,
	reflection.KindInterface,
	reflection.KindTypeAlias,
	reflection.KindProperty,
	reflection.KindEnumMember,
	reflection.KindMethod,
	reflection.KindFunction,
	reflection.KindVariable,
}

// MarkdownTheme renders one Markdown page per module, namespace, class,
// interface and enumeration, laid out in per-kind directories.
type MarkdownTheme struct {
	opts   Options
	scheme urlScheme
}

// NewMarkdownTheme creates the base theme.
func NewMarkdownTheme(opts Options) *MarkdownTheme {
	if opts.EntryDocument == "" {
		opts.EntryDocument = DefaultEntryDocument
	}
	t := &MarkdownTheme{opts: opts}
	t.scheme = t
	return t
}

func (t *MarkdownTheme) EntryDocument() string {
	return t.opts.EntryDocument
}

// URL places a reflection's page under its kind directory.
func (t *MarkdownTheme) URL(r *reflection.Reflection) string {
	return path.Join(kindDirectories[r.Kind], r.FullName()+".md")
}

func (t *MarkdownTheme) GlobalsFile() string {
	return DefaultGlobalsFile
}

// Link returns the href used on page from to reach page to.
func (t *MarkdownTheme) Link(from, to string) string {
	return relativeURL(from, to)
}

// IsOutputDirectory recognizes a directory holding the entry document.
func (t *MarkdownTheme) IsOutputDirectory(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("read output directory: %w", err)
	}
	for _, e := range entries {
		if e.Name() == t.opts.EntryDocument {
			return true, nil
		}
	}
	return false, nil
}

// indexURL is where the listing of the project's top-level members lives.
func (t *MarkdownTheme) indexURL() string {
	if t.opts.hasReadme() {
		return t.scheme.GlobalsFile()
	}
	return t.opts.EntryDocument
}

func (t *MarkdownTheme) assignURLs(project *reflection.Project) {
	project.Root.Walk(func(r *reflection.Reflection) bool {
		r.URL = ""
		if r.Kind.OwnsPage() {
			r.URL = t.scheme.URL(r)
		}
		return true
	})
	project.Root.URL = t.indexURL()
}

// Pages assigns page URLs and lists every page to write.
func (t *MarkdownTheme) Pages(project *reflection.Project) []renderer.Page {
	t.assignURLs(project)

	var pages []renderer.Page
	if t.opts.hasReadme() {
		pages = append(pages, renderer.Page{URL: t.opts.EntryDocument, Kind: renderer.PageReadme})
	}
	pages = append(pages, renderer.Page{URL: t.indexURL(), Kind: renderer.PageIndex, Reflection: project.Root})

	project.Root.Walk(func(r *reflection.Reflection) bool {
		if r.Kind.OwnsPage() {
			pages = append(pages, renderer.Page{URL: r.URL, Kind: renderer.PageReflection, Reflection: r})
		}
		return true
	})
	return pages
}

// Navigation builds the navigation tree for project.
func (t *MarkdownTheme) Navigation(project *reflection.Project) *navigation.Item {
	t.assignURLs(project)
	return navigation.Build(project, navigation.Options{
		EntryPoints:   t.opts.EntryPoints,
		Readme:        t.opts.Readme,
		EntryDocument: t.opts.EntryDocument,
		GlobalsFile:   t.scheme.GlobalsFile(),
	})
}

// Render produces the Markdown for one page.
func (t *MarkdownTheme) Render(project *reflection.Project, page renderer.Page) (string, error) {
	var b strings.Builder
	switch page.Kind {
	case renderer.PageReadme:
		readme := strings.TrimSpace(project.Readme)
		if readme == "" {
			readme = "# " + project.Name()
		}
		b.WriteString(readme)
		b.WriteString("\n")
	case renderer.PageIndex:
		fmt.Fprintf(&b, "# %s\n", project.Name())
		t.writeMembers(&b, page.URL, project.Root)
	case renderer.PageReflection:
		r := page.Reflection
		if r == nil {
			return "", fmt.Errorf("page %s has no reflection", page.URL)
		}
		fmt.Fprintf(&b, "# %s: %s\n\n", r.Kind, r.Name)
		t.writeBreadcrumbs(&b, page.URL, r)
		if r.Comment != "" {
			fmt.Fprintf(&b, "\n%s\n", r.Comment)
		}
		if r.Signature != "" {
			fmt.Fprintf(&b, "\n```go\n%s\n```\n", r.Signature)
		}
		t.writeSources(&b, r)
		t.writeMembers(&b, page.URL, r)
	default:
		return "", fmt.Errorf("unknown page kind %d", page.Kind)
	}
	return b.String(), nil
}

func (t *MarkdownTheme) writeBreadcrumbs(b *strings.Builder, from string, r *reflection.Reflection) {
	var crumbs []string
	for cur := r.Parent; cur != nil; cur = cur.Parent {
		target := cur.URL
		if cur.Kind == reflection.KindProject {
			target = t.opts.EntryDocument
		}
		crumbs = append([]string{fmt.Sprintf("[%s](%s)", cur.Name, t.scheme.Link(from, target))}, crumbs...)
	}
	crumbs = append(crumbs, r.Name)
	b.WriteString(strings.Join(crumbs, " / "))
	b.WriteString("\n")
}

func (t *MarkdownTheme) writeSources(b *strings.Builder, r *reflection.Reflection) {
	if len(r.Sources) == 0 {
		return
	}
	b.WriteString("\n#### Defined in\n\n")
	for _, s := range r.Sources {
		fmt.Fprintf(b, "- %s\n", s)
	}
}

func (t *MarkdownTheme) writeMembers(b *strings.Builder, from string, owner *reflection.Reflection) {
	var groups []reflection.Kind
	for _, kind := range memberGroups {
		if len(owner.ChildrenOfKind(kind)) > 0 {
			groups = append(groups, kind)
		}
	}
	if len(groups) == 0 {
		return
	}

	b.WriteString("\n## Table of contents\n")
	for _, kind := range groups {
		fmt.Fprintf(b, "\n### %s\n\n", kind.Plural())
		for _, c := range owner.ChildrenOfKind(kind) {
			href := "#" + anchor(c.Name)
			if c.URL != "" {
				href = t.scheme.Link(from, c.URL)
			}
			fmt.Fprintf(b, "- [%s](%s)\n", c.Name, href)
		}
	}

	for _, kind := range groups {
		inline := false
		for _, c := range owner.ChildrenOfKind(kind) {
			if c.URL != "" {
				continue
			}
			if !inline {
				fmt.Fprintf(b, "\n## %s\n", kind.Plural())
				inline = true
			}
			t.writeMember(b, c)
		}
	}
}

func (t *MarkdownTheme) writeMember(b *strings.Builder, r *reflection.Reflection) {
	fmt.Fprintf(b, "\n### %s\n", r.Name)
	if r.Signature != "" {
		fmt.Fprintf(b, "\n```go\n%s\n```\n", r.Signature)
	}
	if r.Comment != "" {
		fmt.Fprintf(b, "\n%s\n", r.Comment)
	}
	t.writeSources(b, r)
}

// anchor approximates the heading ids GitHub generates.
func anchor(name string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(name) {
		switch {
		case c == ' ':
			b.WriteRune('-')
		case c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteRune(c)
		}
	}
	return b.String()
}
