package llm

import (
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$(?:\$|\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*))`)

// Template is prompt text with $name or ${name} placeholders. "$$" renders a
// literal dollar sign.
type Template struct {
	text  string
	names []string
}

func NewTemplate(text string) *Template {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return &Template{text: text, names: names}
}

// Placeholders returns the distinct names referenced by the template in order
// of first appearance.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Render substitutes every placeholder in a single pass. Substituted values are
// not scanned again and are inserted verbatim.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, name := range t.names {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &MissingPlaceholderError{Names: missing}
	}

	out := placeholderPattern.ReplaceAllStringFunc(t.text, func(m string) string {
		if m == "$$" {
			return "$"
		}
		name := strings.TrimPrefix(m, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		return vars[name]
	})
	return out, nil
}
