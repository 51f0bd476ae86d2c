package navigation

import (
	"ghwiki/internal/reflection"
)

// ReadmeNone disables the readme page.
const ReadmeNone = "none"

// Item is one node of the navigation tree. It is plain data; themes read it
// but never mutate it.
type Item struct {
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	IsLabel  bool    `json:"isLabel,omitempty"`
	Children []*Item `json:"children,omitempty"`
}

// Options control which top-level entries the tree starts with.
type Options struct {
	EntryPoints   []string
	Readme        string
	EntryDocument string
	GlobalsFile   string
}

// HasReadme reports whether a readme page is rendered.
func (o Options) HasReadme() bool {
	return o.Readme != "" && o.Readme != ReadmeNone
}

// Build creates the navigation tree for a project whose page URLs have
// already been assigned.
func Build(project *reflection.Project, opts Options) *Item {
	root := &Item{Title: project.Name(), Children: []*Item{}}

	if opts.HasReadme() {
		root.Children = append(root.Children, &Item{Title: "Readme", URL: opts.EntryDocument})
	}
	if len(opts.EntryPoints) == 1 {
		url := opts.GlobalsFile
		if !opts.HasReadme() {
			url = opts.EntryDocument
		}
		root.Children = append(root.Children, &Item{Title: "Exports", URL: url})
	}

	for _, kind := range reflection.PageKinds {
		reflections := project.ReflectionsByKind(kind)
		if len(reflections) == 0 {
			continue
		}
		label := &Item{Title: kind.Plural(), IsLabel: true}
		for _, r := range reflections {
			label.Children = append(label.Children, &Item{Title: r.FullName(), URL: r.URL})
		}
		root.Children = append(root.Children, label)
	}
	return root
}
