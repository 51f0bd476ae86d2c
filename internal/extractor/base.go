package extractor

import (
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Unit types produced by the extractors.
const (
	UnitStruct    = "struct"
	UnitInterface = "interface"
	UnitType      = "type"
	UnitFunction  = "function"
	UnitMethod    = "method"
	UnitConstant  = "constant"
	UnitVariable  = "variable"
)

// CodeUnit is the universal container for any extracted code symbol.
type CodeUnit struct {
	ID          string   `json:"id"`
	Filepath    string   `json:"filepath"`
	Package     string   `json:"package"`
	Language    string   `json:"language"`
	StartLine   int      `json:"start_line"`
	EndLine     int      `json:"end_line"`
	UnitType    string   `json:"unit_type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Signature   string   `json:"signature,omitempty"`
	Receiver    string   `json:"receiver,omitempty"` // bare receiver type name for methods
	Type        string   `json:"type,omitempty"`     // declared type of a const/var, or the underlying type of a named type
	Value       string   `json:"value,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Methods     []Method `json:"methods,omitempty"`
}

// Field represents a field in a struct.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Tag         string `json:"tag,omitempty"`
	Description string `json:"description,omitempty"`
}

// Method is a method declared by an interface.
type Method struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description,omitempty"`
}

// Exported reports whether the unit name starts with an upper-case letter.
func (u *CodeUnit) Exported() bool {
	return IsExported(u.Name)
}

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	// ExtractUnits returns the units declared by one captured node; a
	// grouped spec such as "var a, b int" yields one unit per name.
	ExtractUnits(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) []*CodeUnit
}

// IsExported reports whether name is an exported Go identifier.
func IsExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
