package llm

import (
	"strings"
)

// MaxSchemaDepth bounds how deep nested shapes are expanded in a summary.
const MaxSchemaDepth = 6

// Summarize renders a shape as plain text for a model to read. Every field is
// listed as "path: [optional ]type - description". Nested objects use a
// "parent." prefix and arrays of shapes use "parent[].". A shape that is
// already being expanded higher up is printed by name only.
func Summarize(shape *Shape) string {
	var b strings.Builder
	b.WriteString("Schema Definition:\n")
	b.WriteString(strings.Repeat("-", 40))
	b.WriteString("\n")
	if shape == nil {
		return b.String()
	}

	b.WriteString("# ")
	b.WriteString(shape.Name)
	if shape.Description != "" {
		b.WriteString(" - ")
		b.WriteString(shape.Description)
	}
	b.WriteString("\n")

	onPath := map[string]bool{shape.Name: true}
	writeFields(&b, shape, "", 0, onPath)
	return b.String()
}

func writeFields(b *strings.Builder, shape *Shape, prefix string, depth int, onPath map[string]bool) {
	indent := strings.Repeat("  ", depth)
	for _, f := range shape.Fields {
		b.WriteString(indent)
		b.WriteString(prefix)
		b.WriteString(f.Name)
		b.WriteString(": ")
		if !f.Required {
			b.WriteString("optional ")
		}
		b.WriteString(f.typeName())
		if f.Description != "" {
			b.WriteString(" - ")
			b.WriteString(f.Description)
		}
		b.WriteString("\n")

		nested := f.Shape
		if nested == nil || (f.Type != TypeObject && f.Type != TypeArray) {
			continue
		}
		if onPath[nested.Name] || depth+1 >= MaxSchemaDepth {
			continue
		}

		childPrefix := prefix + f.Name + "."
		if f.Type == TypeArray {
			childPrefix = prefix + f.Name + "[]."
		}
		onPath[nested.Name] = true
		writeFields(b, nested, childPrefix, depth+1, onPath)
		delete(onPath, nested.Name)
	}
}
