package reflection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"ghwiki/internal/crawler"
	"ghwiki/internal/extractor"

	"golang.org/x/sync/errgroup"
)

// Builder turns crawled source into a Project.
type Builder struct {
	crawler *crawler.Crawler
	logger  *slog.Logger
}

// NewBuilder creates a new builder.
func NewBuilder(c *crawler.Crawler) *Builder {
	return &Builder{
		crawler: c,
		logger:  slog.Default(),
	}
}

// WithLogger replaces the builder's logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build scans every entry point and assembles the project.
// A single entry point contributes its members to the project directly;
// several entry points each become a module.
func (b *Builder) Build(ctx context.Context, name string, entryPoints []string) (*Project, error) {
	if len(entryPoints) == 0 {
		return nil, fmt.Errorf("no entry points given")
	}
	project := NewProject(name)

	// Entry points are scanned concurrently; assembly below keeps their order.
	scanned := make([]map[string][]*extractor.FileResult, len(entryPoints))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ep := range entryPoints {
		g.Go(func() error {
			info, err := os.Stat(ep)
			if err != nil {
				return fmt.Errorf("entry point %s: %w", ep, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("entry point %s is not a directory", ep)
			}
			packages, err := b.scan(gctx, ep)
			if err != nil {
				return fmt.Errorf("scan %s failed: %w", ep, err)
			}
			scanned[i] = packages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	modules, err := moduleNames(entryPoints, scanned)
	if err != nil {
		return nil, err
	}

	for i, ep := range entryPoints {
		packages := scanned[i]
		container := project.Root
		if len(entryPoints) > 1 {
			container = &Reflection{Name: modules[i], Kind: KindModule}
			project.Root.AddChild(container)
		}
		if len(packages) == 0 {
			b.logger.Warn("entry point contains no Go files", "entry_point", ep)
		}
		populatePackage(container, packages["."], ep)
		if err := addNamespaces(container, packages, ep); err != nil {
			return nil, fmt.Errorf("entry point %s: %w", ep, err)
		}
	}

	sortChildren(project.Root)
	project.AssignIDs()
	return project, nil
}

// scan groups file results by directory relative to root ("." for root itself).
func (b *Builder) scan(ctx context.Context, root string) (map[string][]*extractor.FileResult, error) {
	packages := make(map[string][]*extractor.FileResult)
	err := b.crawler.ScanProject(ctx, root, func(f *extractor.FileResult) {
		rel, err := filepath.Rel(root, filepath.Dir(f.Path))
		if err != nil {
			rel = filepath.Dir(f.Path)
		}
		rel = filepath.ToSlash(rel)
		packages[rel] = append(packages[rel], f)
	})
	if err != nil {
		return nil, err
	}
	return packages, nil
}

// addNamespaces nests every sub-package under container, creating
// intermediate namespaces for directories that hold no Go files.
func addNamespaces(container *Reflection, packages map[string][]*extractor.FileResult, root string) error {
	dirs := make([]string, 0, len(packages))
	for dir := range packages {
		if dir != "." {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)

	names, err := namespaceNames(dirs, packages)
	if err != nil {
		return err
	}

	byDir := map[string]*Reflection{".": container}
	var ensure func(dir string) *Reflection
	ensure = func(dir string) *Reflection {
		if ns, ok := byDir[dir]; ok {
			return ns
		}
		parent := ensure(pathDir(dir))
		ns := &Reflection{Name: names[dir], Kind: KindNamespace}
		parent.AddChild(ns)
		byDir[dir] = ns
		return ns
	}

	for _, dir := range dirs {
		populatePackage(ensure(dir), packages[dir], root)
	}
	return nil
}

// moduleNames names one module per entry point after its package. Entry
// points sharing a package name (several "main" packages, say) fall back to
// their directory name, since pages are keyed by full name.
func moduleNames(entryPoints []string, scanned []map[string][]*extractor.FileResult) ([]string, error) {
	preferred := make([]string, len(entryPoints))
	fallback := make([]string, len(entryPoints))
	for i, ep := range entryPoints {
		fallback[i] = dirName(ep)
		preferred[i] = packageName(scanned[i]["."], fallback[i])
	}
	return uniqueNames(entryPoints, preferred, fallback)
}

// namespaceNames names every directory below an entry point, intermediate
// ones included, keeping sibling names distinct.
func namespaceNames(dirs []string, packages map[string][]*extractor.FileResult) (map[string]string, error) {
	siblings := make(map[string][]string)
	seen := make(map[string]bool)
	for _, dir := range dirs {
		for d := dir; d != "." && !seen[d]; d = pathDir(d) {
			seen[d] = true
			siblings[pathDir(d)] = append(siblings[pathDir(d)], d)
		}
	}

	names := make(map[string]string, len(seen))
	for _, group := range siblings {
		sort.Strings(group)
		preferred := make([]string, len(group))
		fallback := make([]string, len(group))
		for i, d := range group {
			fallback[i] = path.Base(d)
			preferred[i] = packageName(packages[d], fallback[i])
		}
		unique, err := uniqueNames(group, preferred, fallback)
		if err != nil {
			return nil, err
		}
		for i, d := range group {
			names[d] = unique[i]
		}
	}
	return names, nil
}

// uniqueNames keeps preferred names that occur once and swaps the rest for
// their fallback. It fails when the result still repeats a name.
func uniqueNames(sources, preferred, fallback []string) ([]string, error) {
	counts := make(map[string]int, len(preferred))
	for _, n := range preferred {
		counts[n]++
	}
	out := make([]string, len(preferred))
	owner := make(map[string]string, len(preferred))
	for i, n := range preferred {
		if counts[n] > 1 {
			n = fallback[i]
		}
		if prev, dup := owner[n]; dup {
			return nil, fmt.Errorf("%s and %s would both be documented as %q", prev, sources[i], n)
		}
		owner[n] = sources[i]
		out[i] = n
	}
	return out, nil
}

// dirName is the last element of dir, resolved so that "." names the
// working directory.
func dirName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(dir)
}

func pathDir(dir string) string {
	idx := strings.LastIndex(dir, "/")
	if idx == -1 {
		return "."
	}
	return dir[:idx]
}

func packageName(files []*extractor.FileResult, dir string) string {
	for _, f := range files {
		if f.Package != "" {
			return f.Package
		}
	}
	return filepath.Base(dir)
}

// populatePackage adds the exported members of one package to container.
func populatePackage(container *Reflection, files []*extractor.FileResult, root string) {
	var units []*extractor.CodeUnit
	for _, f := range files {
		units = append(units, f.Units...)
	}

	enumTypes := make(map[string]bool)
	for _, u := range units {
		if u.UnitType == extractor.UnitConstant && u.Type != "" && u.Exported() {
			enumTypes[u.Type] = true
		}
	}

	types := make(map[string]*Reflection)
	for _, u := range units {
		if !u.Exported() {
			continue
		}
		var r *Reflection
		switch u.UnitType {
		case extractor.UnitStruct:
			r = newReflection(u, KindClass, root)
			for _, f := range u.Fields {
				if !extractor.IsExported(f.Name) {
					continue
				}
				r.AddChild(&Reflection{
					Name:      f.Name,
					Kind:      KindProperty,
					Comment:   f.Description,
					Type:      f.Type,
					Signature: strings.TrimSpace(f.Name + " " + f.Type),
				})
			}
		case extractor.UnitInterface:
			r = newReflection(u, KindInterface, root)
			for _, m := range u.Methods {
				if !extractor.IsExported(m.Name) {
					continue
				}
				r.AddChild(&Reflection{
					Name:      m.Name,
					Kind:      KindMethod,
					Comment:   m.Description,
					Signature: m.Signature,
				})
			}
		case extractor.UnitType:
			if enumTypes[u.Name] {
				r = newReflection(u, KindEnumeration, root)
			} else {
				r = newReflection(u, KindTypeAlias, root)
			}
		default:
			continue
		}
		types[u.Name] = r
		container.AddChild(r)
	}

	for _, u := range units {
		if !u.Exported() {
			continue
		}
		switch u.UnitType {
		case extractor.UnitMethod:
			owner, ok := types[u.Receiver]
			if !ok || owner.Kind == KindInterface {
				continue
			}
			owner.AddChild(newReflection(u, KindMethod, root))
		case extractor.UnitFunction:
			container.AddChild(newReflection(u, KindFunction, root))
		case extractor.UnitVariable:
			container.AddChild(newReflection(u, KindVariable, root))
		case extractor.UnitConstant:
			if enum, ok := types[u.Type]; ok && enum.Kind == KindEnumeration {
				enum.AddChild(newReflection(u, KindEnumMember, root))
				continue
			}
			container.AddChild(newReflection(u, KindVariable, root))
		}
	}
}

func newReflection(u *extractor.CodeUnit, kind Kind, root string) *Reflection {
	file, err := filepath.Rel(root, u.Filepath)
	if err != nil {
		file = u.Filepath
	}
	return &Reflection{
		Name:      u.Name,
		Kind:      kind,
		Comment:   u.Description,
		Signature: u.Signature,
		Type:      u.Type,
		Sources:   []Source{{File: filepath.ToSlash(file), Line: u.StartLine}},
	}
}

// sortOrder ranks kinds for member listings; properties precede methods.
var sortOrder = map[Kind]int{
	KindModule:      0,
	KindNamespace:   1,
	KindEnumeration: 2,
	KindClass:       3,
	KindInterface:   4,
	KindTypeAlias:   5,
	KindProperty:    6,
	KindEnumMember:  7,
	KindMethod:      8,
	KindFunction:    9,
	KindVariable:    10,
}

// sortChildren orders members by kind then name. Enumeration members and
// modules keep declaration order.
func sortChildren(r *Reflection) {
	sort.SliceStable(r.Children, func(i, j int) bool {
		a, b := r.Children[i], r.Children[j]
		if sortOrder[a.Kind] != sortOrder[b.Kind] {
			return sortOrder[a.Kind] < sortOrder[b.Kind]
		}
		if a.Kind == KindEnumMember || a.Kind == KindModule {
			return false
		}
		return a.Name < b.Name
	})
	for _, c := range r.Children {
		sortChildren(c)
	}
}
