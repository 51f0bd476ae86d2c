package reflection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ghwiki/internal/crawler"
	"ghwiki/internal/extractor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesSource = `package shapes

// Color is a fill color.
type Color int

const (
	// Red is red.
	Red Color = iota
	Green
	Blue
)

// Pi approximates pi.
const Pi = 3.14

// Shape is anything with an area.
type Shape interface {
	// Area returns the area.
	Area() float64
}

// Circle is round.
type Circle struct {
	Radius float64
	fill   Color
}

// Area implements Shape.
func (c *Circle) Area() float64 { return Pi * c.Radius * c.Radius }

func (c *Circle) scale() {}

// String names the color.
func (c Color) String() string { return "" }

// Unit is a unit circle.
var Unit = Circle{Radius: 1}

// NewCircle builds a circle.
func NewCircle(r float64) *Circle { return &Circle{Radius: r} }

func internal() {}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	ext, err := extractor.NewExtractor("go")
	require.NoError(t, err)
	return NewBuilder(crawler.NewCrawler(ext))
}

func names(rs []*Reflection) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestBuilder_SingleEntryPoint(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shapes.go"), shapesSource)
	writeFile(t, filepath.Join(root, "solid", "cube.go"), "package solid\n\n// Cube has six faces.\ntype Cube struct{}\n")
	writeFile(t, filepath.Join(root, "solid", "deep", "tess", "t.go"), "package tess\n\n// Tesseract is a 4-cube.\ntype Tesseract struct{}\n")

	project, err := newBuilder(t).Build(context.Background(), "Shapes", []string{root})
	require.NoError(t, err)

	assert.Equal(t, "Shapes", project.Name())
	assert.Empty(t, project.ReflectionsByKind(KindModule))

	t.Run("Members of the entry package sit on the project", func(t *testing.T) {
		assert.Equal(t,
			[]string{"solid", "Color", "Circle", "Shape", "NewCircle", "Pi", "Unit"},
			names(project.Root.Children))
	})

	t.Run("Enumeration", func(t *testing.T) {
		enums := project.ReflectionsByKind(KindEnumeration)
		require.Len(t, enums, 1)
		color := enums[0]
		assert.Equal(t, "Color is a fill color.", color.Comment)
		assert.Equal(t, []string{"Red", "Green", "Blue"}, names(color.ChildrenOfKind(KindEnumMember)))
		assert.Equal(t, []string{"String"}, names(color.ChildrenOfKind(KindMethod)))
	})

	t.Run("Class", func(t *testing.T) {
		classes := project.ReflectionsByKind(KindClass)
		assert.ElementsMatch(t, []string{"Circle", "Cube", "Tesseract"}, names(classes))
		circle := project.Root.Children[2]
		require.Equal(t, "Circle", circle.Name)
		assert.Equal(t, []string{"Radius", "Area"}, names(circle.Children))
		assert.Equal(t, KindProperty, circle.Children[0].Kind)
		assert.Equal(t, []Source{{File: "shapes.go", Line: 23}}, circle.Sources)
	})

	t.Run("Interface", func(t *testing.T) {
		shape := project.ReflectionsByKind(KindInterface)[0]
		require.Len(t, shape.Children, 1)
		assert.Equal(t, "Area returns the area.", shape.Children[0].Comment)
	})

	t.Run("Namespaces nest by directory", func(t *testing.T) {
		namespaces := project.ReflectionsByKind(KindNamespace)
		require.Len(t, namespaces, 3)
		assert.Equal(t, "solid", namespaces[0].FullName())
		assert.Equal(t, "solid.deep", namespaces[1].FullName())
		assert.Equal(t, "solid.deep.tess", namespaces[2].FullName())
		assert.Equal(t, "solid.deep.tess.Tesseract", namespaces[2].Children[0].FullName())
	})

	t.Run("IDs are depth-first", func(t *testing.T) {
		assert.Equal(t, 0, project.Root.ID)
		assert.Equal(t, 1, project.Root.Children[0].ID)
		assert.Equal(t, project.Len()-1, project.Root.Children[len(project.Root.Children)-1].ID)
	})
}

func TestBuilder_MultipleEntryPoints(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "auth", "auth.go"), "package auth\n\n// Token is a bearer token.\ntype Token struct{}\n")
	writeFile(t, filepath.Join(root, "store", "store.go"), "package store\n\n// Open opens.\nfunc Open() {}\n")

	project, err := newBuilder(t).Build(context.Background(), "Multi",
		[]string{filepath.Join(root, "store"), filepath.Join(root, "auth")})
	require.NoError(t, err)

	modules := project.ReflectionsByKind(KindModule)
	assert.Equal(t, []string{"store", "auth"}, names(modules), "modules keep entry point order")
	assert.Equal(t, "auth.Token", modules[1].Children[0].FullName())
}

func TestBuilder_BadEntryPoints(t *testing.T) {
	b := newBuilder(t)

	_, err := b.Build(context.Background(), "x", nil)
	assert.Error(t, err)

	_, err = b.Build(context.Background(), "x", []string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "f.go")
	writeFile(t, file, "package f\n")
	_, err = b.Build(context.Background(), "x", []string{file})
	assert.Error(t, err)
}

func TestBuilder_DuplicatePackageNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cmd", "server", "main.go"), "package main\n\n// Opts configures the server.\ntype Opts struct{}\n")
	writeFile(t, filepath.Join(root, "cmd", "client", "main.go"), "package main\n\n// Opts configures the client.\ntype Opts struct{}\n")
	writeFile(t, filepath.Join(root, "store", "store.go"), "package store\n\n// Open opens.\nfunc Open() {}\n")

	project, err := newBuilder(t).Build(context.Background(), "Multi", []string{
		filepath.Join(root, "cmd", "server"),
		filepath.Join(root, "cmd", "client"),
		filepath.Join(root, "store"),
	})
	require.NoError(t, err)

	modules := project.ReflectionsByKind(KindModule)
	assert.Equal(t, []string{"server", "client", "store"}, names(modules))

	var classes []string
	for _, c := range project.ReflectionsByKind(KindClass) {
		classes = append(classes, c.FullName())
	}
	assert.ElementsMatch(t, []string{"server.Opts", "client.Opts"}, classes)
}

func TestBuilder_DuplicateNamespaceNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "root.go"), "package app\n")
	writeFile(t, filepath.Join(root, "tools", "gen", "main.go"), "package main\n\n// Gen generates.\nfunc Gen() {}\n")
	writeFile(t, filepath.Join(root, "tools", "lint", "main.go"), "package main\n\n// Lint lints.\nfunc Lint() {}\n")

	project, err := newBuilder(t).Build(context.Background(), "App", []string{root})
	require.NoError(t, err)

	var namespaces []string
	for _, ns := range project.ReflectionsByKind(KindNamespace) {
		namespaces = append(namespaces, ns.FullName())
	}
	assert.ElementsMatch(t, []string{"tools", "tools.gen", "tools.lint"}, namespaces)
}

func TestBuilder_UnresolvableModuleNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one", "cmd", "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "two", "cmd", "main.go"), "package main\n")

	_, err := newBuilder(t).Build(context.Background(), "Multi", []string{
		filepath.Join(root, "one", "cmd"),
		filepath.Join(root, "two", "cmd"),
	})
	assert.ErrorContains(t, err, `"cmd"`)
}
