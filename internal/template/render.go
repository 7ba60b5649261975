// Package template fills {{name}} placeholders in instruction screens.
package template

import (
	"regexp"
	"sort"
)

// Placeholder names available to instruction screens.
const (
	AttentionKey = "attention_key"
	EscapeKey    = "escape_key"
	SyncKey      = "sync_key"
)

var variablePattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Render replaces every {{name}} in text with vars[name]. Placeholders with
// no value are left as-is.
func Render(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// Unknown returns the sorted, de-duplicated placeholder names in text that
// have no entry in vars.
func Unknown(text string, vars map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := vars[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns the placeholder values for the configured response keys.
func Keys(attention, escape, sync string) map[string]string {
	return map[string]string{
		AttentionKey: attention,
		EscapeKey:    escape,
		SyncKey:      sync,
	}
}
