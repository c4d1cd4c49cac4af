package surface

import (
	"fmt"
	"slices"
	"strings"

	"github.com/graphql-go/graphql"
)

var builtinScalars = []string{"Boolean", "Float", "ID", "Int", "String"}

// Print renders the surface in schema definition language. Types and fields
// are sorted by name; enumeration values keep their declared order.
func (s *Surface) Print() string {
	typeMap := s.schema.TypeMap()
	names := make([]string, 0, len(typeMap))
	for name := range typeMap {
		if strings.HasPrefix(name, "__") || slices.Contains(builtinScalars, name) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		switch t := typeMap[name].(type) {
		case *graphql.Object:
			head := "type " + name
			if ifaces := t.Interfaces(); len(ifaces) > 0 {
				ifaceNames := make([]string, len(ifaces))
				for i, iface := range ifaces {
					ifaceNames[i] = iface.Name()
				}
				head += " implements " + strings.Join(ifaceNames, " & ")
			}
			blocks = append(blocks, block(head, printFields(t.Fields())))
		case *graphql.Interface:
			blocks = append(blocks, block("interface "+name, printFields(t.Fields())))
		case *graphql.InputObject:
			var lines []string
			for fname, f := range t.Fields() {
				lines = append(lines, fmt.Sprintf("%s: %s", fname, f.Type))
			}
			slices.Sort(lines)
			blocks = append(blocks, block("input "+name, lines))
		case *graphql.Enum:
			blocks = append(blocks, block("enum "+name, s.enumValues(t)))
		case *graphql.Scalar:
			blocks = append(blocks, "scalar "+name)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func (s *Surface) enumValues(e *graphql.Enum) []string {
	if decl, ok := s.accessor.Enum(e.Name()); ok {
		return decl.Values
	}
	values := make([]string, 0, len(e.Values()))
	for _, v := range e.Values() {
		values = append(values, v.Name)
	}
	slices.Sort(values)
	return values
}

func printFields(fields graphql.FieldDefinitionMap) []string {
	lines := make([]string, 0, len(fields))
	for name, fd := range fields {
		line := name
		if len(fd.Args) > 0 {
			args := make([]string, len(fd.Args))
			for i, a := range fd.Args {
				args[i] = fmt.Sprintf("%s: %s", a.Name(), a.Type)
			}
			line += "(" + strings.Join(args, ", ") + ")"
		}
		lines = append(lines, line+": "+fd.Type.String())
	}
	slices.Sort(lines)
	return lines
}

func block(head string, lines []string) string {
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(" {\n")
	for _, l := range lines {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
