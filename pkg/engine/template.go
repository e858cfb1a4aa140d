package engine

import "strings"

// Variables are the substitution values handed to a template render
type Variables map[string]string

// Template is a channel-aware message renderer. Template storage and editing
// live outside the core; the core only renders.
type Template interface {
	TemplateID() string
	Render(language string, vars Variables) string
	RenderSubject(language string, vars Variables) string
	SupportsChannel(ch Channel) bool
}

// TargetVariables derives the render variables from a target snapshot
func TargetVariables(t Target) Variables {
	first := ""
	if fields := strings.Fields(t.Name); len(fields) > 0 {
		first = fields[0]
	}
	return Variables{
		"firstName": first,
		"fullName":  t.Name,
	}
}

// pickTemplate selects the first template enabled for the channel, falling
// back to the first template overall. Returns nil when none exist.
func pickTemplate(templates []Template, ch Channel) Template {
	for _, t := range templates {
		if t.SupportsChannel(ch) {
			return t
		}
	}
	if len(templates) > 0 {
		return templates[0]
	}
	return nil
}
