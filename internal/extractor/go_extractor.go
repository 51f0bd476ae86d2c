package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements LanguageExtractor for Go.
type GoExtractor struct{}

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) GetQuery() string {
	return `
		(function_declaration) @func
		(method_declaration) @func
		(type_spec) @type
		(const_spec) @const
		(var_spec) @var
	`
}

func (g *GoExtractor) ExtractUnits(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) []*CodeUnit {
	var units []*CodeUnit
	switch captureName {
	case "func":
		if unit := g.extractFunctionUnit(node, sourceCode, filepath); unit != nil {
			units = append(units, unit)
		}
	case "type":
		if unit := g.extractTypeUnit(node, sourceCode, filepath); unit != nil {
			units = append(units, unit)
		}
	case "const":
		units = g.extractConstUnits(node, sourceCode, filepath)
	case "var":
		units = g.extractVarUnits(node, sourceCode, filepath)
	}

	for _, unit := range units {
		unit.Package = packageName
		unit.Language = "go"
	}
	return units
}

func (g *GoExtractor) extractTypeUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	// A lone "type X ..." carries its doc comment on the declaration,
	// a grouped one on the spec itself.
	declNode := node.Parent()
	if declNode == nil || declNode.Type() != "type_declaration" {
		declNode = node
	}
	docComment := g.extractDocComment(node, sourceCode)
	if docComment == "" {
		docComment = g.extractDocComment(declNode, sourceCode)
	}

	unit := &CodeUnit{
		ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(declNode.StartPoint().Row + 1),
		EndLine:     int(declNode.EndPoint().Row + 1),
		UnitType:    UnitType,
		Name:        name,
		Description: docComment,
	}

	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return unit
	}
	switch typeNode.Type() {
	case "struct_type":
		unit.UnitType = UnitStruct
		unit.Signature = "type " + name + " struct"
		unit.Fields = g.extractStructFields(typeNode, sourceCode)
	case "interface_type":
		unit.UnitType = UnitInterface
		unit.Signature = "type " + name + " interface"
		unit.Methods = g.extractInterfaceMethods(typeNode, sourceCode)
	default:
		unit.Type = typeNode.Content(sourceCode)
		unit.Signature = "type " + name + " " + unit.Type
	}
	return unit
}

func (g *GoExtractor) extractStructFields(structNode *sitter.Node, sourceCode []byte) []Field {
	fields := []Field{}
	var fieldList *sitter.Node
	for i := 0; i < int(structNode.ChildCount()); i++ {
		child := structNode.Child(i)
		if child.Type() == "field_declaration_list" {
			fieldList = child
			break
		}
	}
	if fieldList == nil {
		return fields
	}

	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		fieldDecl := fieldList.NamedChild(i)
		if fieldDecl.Type() != "field_declaration" {
			continue
		}

		var fieldType, fieldTag string
		if typeNode := fieldDecl.ChildByFieldName("type"); typeNode != nil {
			fieldType = typeNode.Content(sourceCode)
		}
		if tagNode := fieldDecl.ChildByFieldName("tag"); tagNode != nil {
			fieldTag = tagNode.Content(sourceCode)
		}
		doc := g.extractDocComment(fieldDecl, sourceCode)

		foundNames := false
		for j := 0; j < int(fieldDecl.NamedChildCount()); j++ {
			child := fieldDecl.NamedChild(j)
			if child.Type() == "field_identifier" {
				fields = append(fields, Field{
					Name:        child.Content(sourceCode),
					Type:        fieldType,
					Tag:         fieldTag,
					Description: doc,
				})
				foundNames = true
			}
		}

		// Embedded field: the name is the bare type name.
		if !foundNames && fieldType != "" {
			name := fieldType
			if lastDot := strings.LastIndex(name, "."); lastDot != -1 {
				name = name[lastDot+1:]
			}
			name = strings.TrimPrefix(name, "*")
			fields = append(fields, Field{Name: name, Type: fieldType, Tag: fieldTag, Description: doc})
		}
	}
	return fields
}

func (g *GoExtractor) extractInterfaceMethods(interfaceNode *sitter.Node, sourceCode []byte) []Method {
	methods := []Method{}
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "method_elem", "method_spec":
				nameNode := child.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				methods = append(methods, Method{
					Name:        nameNode.Content(sourceCode),
					Signature:   child.Content(sourceCode),
					Description: g.extractDocComment(child, sourceCode),
				})
			case "method_spec_list":
				visit(child)
			}
		}
	}
	visit(interfaceNode)
	return methods
}

func (g *GoExtractor) extractFunctionUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	unit := &CodeUnit{
		ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    UnitFunction,
		Name:        name,
		Description: g.extractDocComment(node, sourceCode),
	}

	if node.Type() == "method_declaration" {
		unit.UnitType = UnitMethod
		if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
			unit.Receiver = receiverTypeName(receiverNode, sourceCode)
		}
	}

	if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
		unit.Signature = strings.TrimSpace(string(sourceCode[node.StartByte():bodyNode.StartByte()]))
	} else {
		unit.Signature = node.Content(sourceCode)
	}
	return unit
}

// receiverTypeName reduces "(u *List[T])" to "List".
func receiverTypeName(receiverNode *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(receiverNode.NamedChildCount()); i++ {
		param := receiverNode.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}
		typeNode := param.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := strings.TrimPrefix(typeNode.Content(sourceCode), "*")
		if idx := strings.Index(name, "["); idx != -1 {
			name = name[:idx]
		}
		return strings.TrimSpace(name)
	}
	return ""
}

func (g *GoExtractor) extractConstUnits(node *sitter.Node, sourceCode []byte, filepath string) []*CodeUnit {
	docComment := g.extractDocComment(node, sourceCode)
	if parentNode := node.Parent(); docComment == "" && parentNode != nil && parentNode.Type() == "const_declaration" {
		docComment = g.extractDocComment(parentNode, sourceCode)
	}

	var constType string
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		constType = typeNode.Content(sourceCode)
	}
	valueNode := node.ChildByFieldName("value")
	if valueNode == nil && constType == "" {
		constType = implicitConstType(node, sourceCode)
	}

	var units []*CodeUnit
	for i, name := range specNames(node, sourceCode) {
		units = append(units, &CodeUnit{
			ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
			Filepath:    filepath,
			StartLine:   int(node.StartPoint().Row + 1),
			EndLine:     int(node.EndPoint().Row + 1),
			UnitType:    UnitConstant,
			Name:        name,
			Description: docComment,
			Signature:   "const " + strings.TrimSpace(node.Content(sourceCode)),
			Type:        constType,
			Value:       specValue(valueNode, i, sourceCode),
		})
	}
	return units
}

// specNames returns every identifier bound by a const or var spec.
func specNames(node *sitter.Node, sourceCode []byte) []string {
	var names []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsNamed() && node.FieldNameForChild(i) == "name" {
			names = append(names, child.Content(sourceCode))
		}
	}
	return names
}

// specValue is the i-th expression of a spec's value list, or the whole
// list when it does not have one expression per name.
func specValue(valueNode *sitter.Node, i int, sourceCode []byte) string {
	if valueNode == nil {
		return ""
	}
	if valueNode.Type() == "expression_list" && i < int(valueNode.NamedChildCount()) {
		return valueNode.NamedChild(i).Content(sourceCode)
	}
	return valueNode.Content(sourceCode)
}

// implicitConstType follows Go's implicit repetition inside a const block:
// a spec without an expression list repeats the type of the nearest
// preceding spec that has one.
func implicitConstType(node *sitter.Node, sourceCode []byte) string {
	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if prev.Type() != "const_spec" {
			continue
		}
		if prev.ChildByFieldName("value") == nil {
			continue
		}
		if typeNode := prev.ChildByFieldName("type"); typeNode != nil {
			return typeNode.Content(sourceCode)
		}
		return ""
	}
	return ""
}

func (g *GoExtractor) extractVarUnits(node *sitter.Node, sourceCode []byte, filepath string) []*CodeUnit {
	docComment := g.extractDocComment(node, sourceCode)
	if parentNode := node.Parent(); docComment == "" && parentNode != nil {
		docComment = g.extractDocComment(parentNode, sourceCode)
	}

	var varType string
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		varType = typeNode.Content(sourceCode)
	}
	valueNode := node.ChildByFieldName("value")

	var units []*CodeUnit
	for i, name := range specNames(node, sourceCode) {
		units = append(units, &CodeUnit{
			ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
			Filepath:    filepath,
			StartLine:   int(node.StartPoint().Row + 1),
			EndLine:     int(node.EndPoint().Row + 1),
			UnitType:    UnitVariable,
			Name:        name,
			Description: docComment,
			Signature:   "var " + strings.TrimSpace(node.Content(sourceCode)),
			Type:        varType,
			Value:       specValue(valueNode, i, sourceCode),
		})
	}
	return units
}

func (g *GoExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevNamedSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		// Trailing comment of the previous line, not a doc comment.
		if before := prevSibling.PrevNamedSibling(); before != nil && before.Type() != "comment" && before.EndPoint().Row == prevSibling.StartPoint().Row {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.Join(cleaned, "\n")
}
