// Package reflection is the documentation model: a tree of named, kinded
// symbols rooted at a project. Themes assign page URLs to its nodes.
package reflection

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindProject Kind = iota
	KindModule
	KindNamespace
	KindEnumeration
	KindEnumMember
	KindClass
	KindInterface
	KindTypeAlias
	KindFunction
	KindMethod
	KindProperty
	KindVariable
)

var kindNames = map[Kind]string{
	KindProject:     "Project",
	KindModule:      "Module",
	KindNamespace:   "Namespace",
	KindEnumeration: "Enumeration",
	KindEnumMember:  "Enumeration member",
	KindClass:       "Class",
	KindInterface:   "Interface",
	KindTypeAlias:   "Type alias",
	KindFunction:    "Function",
	KindMethod:      "Method",
	KindProperty:    "Property",
	KindVariable:    "Variable",
}

var kindPlurals = map[Kind]string{
	KindProject:     "Projects",
	KindModule:      "Modules",
	KindNamespace:   "Namespaces",
	KindEnumeration: "Enumerations",
	KindEnumMember:  "Enumeration members",
	KindClass:       "Classes",
	KindInterface:   "Interfaces",
	KindTypeAlias:   "Type aliases",
	KindFunction:    "Functions",
	KindMethod:      "Methods",
	KindProperty:    "Properties",
	KindVariable:    "Variables",
}

// PageKinds are the kinds that get a page of their own, in navigation order.
var PageKinds = []Kind{KindModule, KindNamespace, KindEnumeration, KindClass, KindInterface}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Plural is the group title for a set of reflections of this kind.
func (k Kind) Plural() string {
	if s, ok := kindPlurals[k]; ok {
		return s
	}
	return k.String() + "s"
}

// OwnsPage reports whether reflections of this kind are rendered on their own page.
func (k Kind) OwnsPage() bool {
	for _, pk := range PageKinds {
		if pk == k {
			return true
		}
	}
	return false
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown reflection kind %q", s)
}

// Source is a declaration site.
type Source struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Reflection is one node of the documentation model.
type Reflection struct {
	ID        int
	Name      string
	Kind      Kind
	Comment   string
	Signature string
	Type      string
	Sources   []Source

	// URL of the page documenting this reflection, relative to the output
	// directory. Empty for reflections rendered inline on their parent's page.
	URL string

	Parent   *Reflection
	Children []*Reflection
}

// AddChild appends c and sets its parent.
func (r *Reflection) AddChild(c *Reflection) {
	c.Parent = r
	r.Children = append(r.Children, c)
}

// FullName joins the names of all ancestors below the project with dots.
func (r *Reflection) FullName() string {
	var parts []string
	for cur := r; cur != nil && cur.Kind != KindProject; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// ChildrenOfKind returns direct children of kind k in order.
func (r *Reflection) ChildrenOfKind(k Kind) []*Reflection {
	var out []*Reflection
	for _, c := range r.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits r and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (r *Reflection) Walk(fn func(*Reflection) bool) {
	if !fn(r) {
		return
	}
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

// Project is the root of the model.
type Project struct {
	Root *Reflection

	// Readme is the contents of the project readme, empty when there is none.
	Readme string
}

// NewProject returns an empty project named name.
func NewProject(name string) *Project {
	return &Project{Root: &Reflection{Name: name, Kind: KindProject}}
}

func (p *Project) Name() string {
	return p.Root.Name
}

// ReflectionsByKind returns every reflection of kind k in depth-first order.
func (p *Project) ReflectionsByKind(k Kind) []*Reflection {
	var out []*Reflection
	p.Root.Walk(func(r *Reflection) bool {
		if r.Kind == k {
			out = append(out, r)
		}
		return true
	})
	return out
}

// AssignIDs numbers every reflection depth-first starting at the project (0).
func (p *Project) AssignIDs() {
	next := 0
	p.Root.Walk(func(r *Reflection) bool {
		r.ID = next
		next++
		return true
	})
}

// Len is the number of reflections including the project.
func (p *Project) Len() int {
	n := 0
	p.Root.Walk(func(*Reflection) bool {
		n++
		return true
	})
	return n
}
