package preset

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// suffixes maps a preset identifier to the style clause appended to the
// user's prompt. Unknown presets are ignored rather than rejected so older
// clients keep working when a preset is retired.
var suffixes = map[string]string{
	"cartoon":    "rendered as a playful cartoon illustration with bold outlines and flat colors",
	"watercolor": "painted as a soft watercolor with visible paper texture and gentle color bleed",
	"cyberpunk":  "reimagined in a neon-lit cyberpunk style with rain-slick reflections",
	"vintage":    "processed as a faded vintage photograph with warm tones and film grain",
	"sketch":     "drawn as a detailed pencil sketch with cross-hatched shading",
}

// Info describes a preset for client-facing listings.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Apply appends the preset's style clause to the prompt. Empty or unknown
// presets leave the prompt untouched.
func Apply(prompt, id string) string {
	suffix, ok := suffixes[normalize(id)]
	if !ok {
		return prompt
	}
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return suffix
	}
	return trimmed + ", " + suffix
}

// DisplayName renders a preset identifier for UI consumption.
func DisplayName(id string) string {
	return cases.Title(language.English).String(normalize(id))
}

// List returns every known preset sorted by identifier.
func List() []Info {
	out := make([]Info, 0, len(suffixes))
	for id, suffix := range suffixes {
		out = append(out, Info{ID: id, Name: DisplayName(id), Description: suffix})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
