package prompt

import "strings"

// Expand replaces every {{name}} token in text with its value from vars.
// Unknown tokens are left untouched.
func Expand(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	for name, value := range vars {
		text = strings.ReplaceAll(text, "{{"+name+"}}", value)
	}
	return text
}
