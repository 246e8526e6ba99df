package extractor

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"odatadoc/internal/ir"
)

// CSharpExtractor implements LanguageExtractor for C#. It yields one
// operation per method carrying an ODataFunction or ODataAction attribute.
type CSharpExtractor struct{}

func (c *CSharpExtractor) GetLanguage() *sitter.Language {
	return csharp.GetLanguage()
}

func (c *CSharpExtractor) GetQuery() string {
	return `(method_declaration) @method`
}

const (
	attrFunction = "ODataFunction"
	attrAction   = "ODataAction"
)

var requiredModifiers = []string{"public", "static"}

func (c *CSharpExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, namespace string) *ir.Operation {
	if captureName != "method" {
		return nil
	}
	attrs := c.attributes(node, sourceCode)
	if !isOperation(attrs) {
		return nil
	}

	op := &ir.Operation{
		IsValid: true,
		File:    filepath,
		Line:    int(node.StartPoint().Row + 1),
		EndLine: int(node.EndPoint().Row + 1),
	}
	if n := node.ChildByFieldName("name"); n != nil {
		op.MethodName = n.Content(sourceCode)
	}
	op.ReturnValue.Type = c.returnType(node, sourceCode)

	modifiers := c.modifiers(node, sourceCode)
	for _, m := range requiredModifiers {
		if !modifiers[m] {
			op.IsValid = false
		}
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		op.Parameters = c.extractParams(params, sourceCode)
	}
	if len(op.Parameters) == 0 || !strings.HasSuffix(op.Parameters[0].Type, "Content") {
		op.IsValid = false
	}

	for _, a := range attrs {
		applyAttribute(op, a)
	}

	op.Documentation = c.extractDocComment(node, sourceCode)
	op.Namespace, op.ClassName = c.enclosing(node, sourceCode)
	if op.Namespace == "" {
		op.Namespace = namespace
	}
	return op
}

// attribute is one attribute applied to a method with its arguments in
// source order.
type attribute struct {
	Name string
	Args []attributeArg
}

type attributeArg struct {
	Name  string // set for Name = value arguments
	Value string // literal text, quotes included
}

func isOperation(attrs []attribute) bool {
	for _, a := range attrs {
		if a.Name == attrFunction || a.Name == attrAction {
			return true
		}
	}
	return false
}

func applyAttribute(op *ir.Operation, a attribute) {
	if a.Name == attrAction {
		op.IsAction = true
	}
	for i, arg := range a.Args {
		switch a.Name {
		case "ContentTypes":
			op.ContentTypes = append(op.ContentTypes, arg.Value)
		case "AllowedRoles":
			op.AllowedRoles = append(op.AllowedRoles, arg.Value)
		case "RequiredPermissions":
			op.RequiredPermissions = append(op.RequiredPermissions, arg.Value)
		case "RequiredPolicies":
			op.RequiredPolicies = append(op.RequiredPolicies, arg.Value)
		case "Scenario":
			op.Scenarios = append(op.Scenarios, arg.Value)
		case attrFunction, attrAction:
			switch arg.Name {
			case "":
				if i == 0 {
					op.OperationName = arg.Value
				}
			case "OperationName":
				op.OperationName = arg.Value
			case "Description":
				op.Description = arg.Value
			case "Icon":
				op.Icon = arg.Value
			}
		}
	}
}

func (c *CSharpExtractor) attributes(method *sitter.Node, sourceCode []byte) []attribute {
	var attrs []attribute
	for i := 0; i < int(method.NamedChildCount()); i++ {
		list := method.NamedChild(i)
		if list.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(list.NamedChildCount()); j++ {
			an := list.NamedChild(j)
			if an.Type() != "attribute" {
				continue
			}
			attrs = append(attrs, c.attribute(an, sourceCode))
		}
	}
	return attrs
}

func (c *CSharpExtractor) attribute(node *sitter.Node, sourceCode []byte) attribute {
	var a attribute
	if n := node.ChildByFieldName("name"); n != nil {
		a.Name = attributeName(n.Content(sourceCode))
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		argList := node.NamedChild(i)
		if argList.Type() != "attribute_argument_list" {
			continue
		}
		for j := 0; j < int(argList.NamedChildCount()); j++ {
			arg := argList.NamedChild(j)
			if arg.Type() != "attribute_argument" {
				continue
			}
			a.Args = append(a.Args, parseAttributeArg(arg.Content(sourceCode)))
		}
	}
	return a
}

// attributeName drops a namespace qualifier and the Attribute suffix.
func attributeName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Attribute")
}

var namedArg = regexp.MustCompile(`^([A-Za-z_]\w*)\s*=([^=].*)$`)

// parseAttributeArg splits "Name = value" arguments and unwraps nameof(x).
func parseAttributeArg(src string) attributeArg {
	src = strings.TrimSpace(src)
	var arg attributeArg
	if m := namedArg.FindStringSubmatch(src); m != nil {
		arg.Name = m[1]
		src = strings.TrimSpace(m[2])
	}
	if strings.HasPrefix(src, "nameof(") && strings.HasSuffix(src, ")") {
		src = src[len("nameof(") : len(src)-1]
	}
	arg.Value = src
	return arg
}

func (c *CSharpExtractor) modifiers(method *sitter.Node, sourceCode []byte) map[string]bool {
	mods := make(map[string]bool)
	for i := 0; i < int(method.ChildCount()); i++ {
		child := method.Child(i)
		if child.Type() == "modifier" {
			mods[strings.TrimSpace(child.Content(sourceCode))] = true
		}
	}
	return mods
}

// returnType reads the declared return type. Grammar revisions disagree on
// the field name.
func (c *CSharpExtractor) returnType(method *sitter.Node, sourceCode []byte) string {
	for _, field := range []string{"returns", "type"} {
		if n := method.ChildByFieldName(field); n != nil {
			return n.Content(sourceCode)
		}
	}
	return ""
}

func (c *CSharpExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []ir.Parameter {
	var params []ir.Parameter
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		pNode := paramsNode.NamedChild(i)
		if pNode.Type() != "parameter" {
			continue
		}
		typeNode := pNode.ChildByFieldName("type")
		nameNode := pNode.ChildByFieldName("name")
		if typeNode == nil || nameNode == nil {
			continue
		}
		params = append(params, ir.Parameter{
			Name:       nameNode.Content(sourceCode),
			Type:       strings.TrimSpace(typeNode.Content(sourceCode)),
			IsOptional: hasDefault(pNode),
		})
	}
	return params
}

func hasDefault(param *sitter.Node) bool {
	for i := 0; i < int(param.ChildCount()); i++ {
		switch param.Child(i).Type() {
		case "equals_value_clause", "=":
			return true
		}
	}
	return false
}

// extractDocComment collects the /// lines directly above the method. A
// blank line or an ordinary comment ends the block.
func (c *CSharpExtractor) extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" {
			break
		}
		text := prevSibling.Content(sourceCode)
		if !strings.HasPrefix(text, "///") {
			break
		}
		commentLines = append([]string{text}, commentLines...)
		currentNode = prevSibling
	}
	return strings.Join(commentLines, "\n")
}

// enclosing returns the nearest namespace and class around node.
func (c *CSharpExtractor) enclosing(node *sitter.Node, sourceCode []byte) (namespace, class string) {
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "class_declaration", "struct_declaration", "record_declaration":
			if class == "" {
				if name := n.ChildByFieldName("name"); name != nil {
					class = name.Content(sourceCode)
				}
			}
		case "namespace_declaration":
			if namespace == "" {
				if name := n.ChildByFieldName("name"); name != nil {
					namespace = name.Content(sourceCode)
				}
			}
		}
	}
	return namespace, class
}
