package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ghwiki/internal/navigation"
	"ghwiki/internal/reflection"
	"ghwiki/internal/renderer"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func markdown(s string) string {
	return strings.TrimLeft(dedent.Dedent(s), "\n")
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
}

func wikiTheme(entryPoints ...string) *WikiTheme {
	return NewWikiTheme(Options{EntryPoints: entryPoints, Readme: "README.md"})
}

func TestWikiTheme_Sidebar(t *testing.T) {
	nav := &navigation.Item{
		Title: "Demo",
		Children: []*navigation.Item{
			{Title: "Home", URL: "Home.md"},
			{Title: "Modules", IsLabel: true, Children: []*navigation.Item{
				{Title: "Foo.Bar", URL: "Foo.Bar.md"},
			}},
			{Title: "Other", IsLabel: true, Children: []*navigation.Item{
				{Title: "Hidden", URL: "Hidden.md"},
			}},
		},
	}

	got := wikiTheme("./a").Sidebar("Demo", nav)

	want := markdown(`
		## Demo

		- [Home](../wiki/Home)

		### Modules

		- [Bar](../wiki/Foo.Bar)
		`)
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Other")
	assert.NotContains(t, got, "Hidden")
}

func TestWikiTheme_Sidebar_SectionFilter(t *testing.T) {
	nav := &navigation.Item{
		Title: "Demo",
		Children: []*navigation.Item{
			{Title: "Readme", URL: "Home.md"},
			{Title: "Exports", URL: "Exports.md"},
			{Title: "Classes", IsLabel: true, Children: []*navigation.Item{{Title: "ClassA", URL: "ClassA.md"}}},
			{Title: "Namespaces", IsLabel: true, Children: []*navigation.Item{
				{Title: "util.net", URL: "util.net.md"},
				{Title: "alpha", URL: "alpha.md"},
			}},
			{Title: "Interfaces", IsLabel: true, Children: []*navigation.Item{{Title: "Runner", URL: "Runner.md"}}},
		},
	}

	got := wikiTheme("./a").Sidebar("Demo", nav)

	want := markdown(`
		## Demo

		- [Home](../wiki/Home)
		- [Exports](../wiki/Exports)

		### Namespaces

		- [net](../wiki/util.net)
		- [alpha](../wiki/alpha)
		`)
	assert.Equal(t, want, got)
}

func TestWikiTheme_Sidebar_Encoding(t *testing.T) {
	nav := &navigation.Item{
		Title: "Demo",
		Children: []*navigation.Item{
			{Title: "My Page", URL: "My Page.md"},
			{Title: "Modules", IsLabel: true, Children: []*navigation.Item{
				{Title: "héllo wörld", URL: "héllo wörld.md"},
			}},
		},
	}

	got := wikiTheme("./a").Sidebar("Demo", nav)

	assert.Contains(t, got, "- [My Page](../wiki/My Page)\n", "top-level links are not encoded")
	assert.Contains(t, got, "- [héllo wörld](../wiki/h%C3%A9llo%20w%C3%B6rld)\n")
}

func TestWikiTheme_Sidebar_PreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		titles := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Za-z][A-Za-z0-9]{0,8}`), 1, 12, rapid.ID[string]).Draw(t, "titles")

		label := &navigation.Item{Title: "Modules", IsLabel: true}
		for _, title := range titles {
			label.Children = append(label.Children, &navigation.Item{Title: title, URL: title + ".md"})
		}
		got := wikiTheme("./a", "./b").Sidebar("P", &navigation.Item{Children: []*navigation.Item{label}})

		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		bullets := lines[len(lines)-len(titles):]
		for i, title := range titles {
			if bullets[i] != "- ["+title+"](../wiki/"+title+")" {
				t.Fatalf("bullet %d = %q, want title %q", i, bullets[i], title)
			}
		}
	})
}

func TestWikiTheme_WriteSidebar(t *testing.T) {
	project := reflection.NewProject("Demo")
	project.Root.AddChild(&reflection.Reflection{Name: "Pool", Kind: reflection.KindClass})
	ns := &reflection.Reflection{Name: "util", Kind: reflection.KindNamespace}
	project.Root.AddChild(ns)
	ns.AddChild(&reflection.Reflection{Name: "Retry", Kind: reflection.KindClass})

	out := t.TempDir()
	sidebar := filepath.Join(out, SidebarFile)
	require.NoError(t, os.WriteFile(sidebar, []byte(strings.Repeat("stale content\n", 50)), 0o644))

	theme := wikiTheme("./pkg")
	event := &renderer.EndEvent{Project: project, OutputDirectory: out}
	require.NoError(t, theme.WriteSidebar(event))

	first, err := os.ReadFile(sidebar)
	require.NoError(t, err)
	want := markdown(`
		## Demo

		- [Home](../wiki/Home)
		- [Exports](../wiki/Exports)

		### Namespaces

		- [util](../wiki/util)
		`)
	assert.Equal(t, want, string(first))

	require.NoError(t, theme.WriteSidebar(event))
	second, err := os.ReadFile(sidebar)
	require.NoError(t, err)
	assert.Equal(t, first, second, "regeneration is byte-identical")
}

func TestWikiTheme_WriteSidebar_MissingDirectory(t *testing.T) {
	event := &renderer.EndEvent{
		Project:         reflection.NewProject("Demo"),
		OutputDirectory: filepath.Join(t.TempDir(), "missing"),
	}
	err := wikiTheme("./a").WriteSidebar(event)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWikiTheme_IsOutputDirectory(t *testing.T) {
	t.Run("generated listing", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Home.md", "Modules.md", ".DS_Store", "_Sidebar.md", "ClassFoo.md", "NamespaceBar.md", "Interface.md")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "media"), 0o755))

		ok, err := wikiTheme("./a", "./b").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("empty directory", func(t *testing.T) {
		ok, err := wikiTheme("./a").IsOutputDirectory(t.TempDir())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("foreign file", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Home.md", "randomfile.txt")

		ok, err := wikiTheme("./a").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("prefix match is anchored and case-sensitive", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "MyClass.md")
		ok, err := wikiTheme("./a").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.False(t, ok)

		dir = t.TempDir()
		touch(t, dir, "classFoo.md")
		ok, err = wikiTheme("./a").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("globals name follows entry point count", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Exports.md")

		ok, err := wikiTheme("./a").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = wikiTheme("./a", "./b").IsOutputDirectory(dir)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := wikiTheme("./a").IsOutputDirectory(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWikiTheme_GlobalsFile(t *testing.T) {
	assert.Equal(t, "Exports.md", wikiTheme("./a").GlobalsFile())
	assert.Equal(t, "Modules.md", wikiTheme("./a", "./b").GlobalsFile())

	rapid.Check(t, func(t *rapid.T) {
		eps := rapid.SliceOfN(rapid.String(), 1, 20).Draw(t, "entryPoints")
		want := "Exports.md"
		if len(eps) >= 2 {
			want = "Modules.md"
		}
		if got := wikiTheme(eps...).GlobalsFile(); got != want {
			t.Fatalf("GlobalsFile(%d entry points) = %s, want %s", len(eps), got, want)
		}
	})
}

func TestWikiTheme_URL(t *testing.T) {
	project := reflection.NewProject("Demo")
	mod := &reflection.Reflection{Name: "Foo", Kind: reflection.KindModule}
	class := &reflection.Reflection{Name: "Baz", Kind: reflection.KindClass}
	project.Root.AddChild(mod)
	mod.AddChild(class)

	theme := wikiTheme("./a", "./b")
	assert.Equal(t, "Foo.md", theme.URL(mod))
	assert.Equal(t, "Foo.Baz.md", theme.URL(class))
	assert.Equal(t, "Home.md", theme.EntryDocument())
}
