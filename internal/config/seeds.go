package config

import (
	"strconv"
	"strings"
)

// PagePlaceholder is the token replaced by the page number when a seed
// template is expanded.
const PagePlaceholder = "{page}"

// SeedTemplate describes a paginated seed URL pattern. The template's
// {page} placeholder is replaced by every integer in [From, To],
// producing one seed per page.
//
// Example:
//
//	template: "https://example.test/search/page/{page}/count/200"
//	from: 1
//	to: 57
type SeedTemplate struct {
	// Template is the URL pattern containing the {page} placeholder.
	Template string `yaml:"template"`

	// From and To bound the inclusive page range.
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Expand returns the seeds produced by this template.
func (t SeedTemplate) Expand() ([]string, error) {
	if t.Template == "" || !strings.Contains(t.Template, PagePlaceholder) || t.From > t.To {
		return nil, ErrInvalidSeedTemplate
	}

	seeds := make([]string, 0, t.To-t.From+1)
	for page := t.From; page <= t.To; page++ {
		seeds = append(seeds, strings.ReplaceAll(t.Template, PagePlaceholder, strconv.Itoa(page)))
	}
	return seeds, nil
}

// ExpandSeeds returns the file's literal seeds followed by all
// template-expanded seeds, preserving order.
func (cf *File) ExpandSeeds() ([]string, error) {
	seeds := make([]string, 0, len(cf.Seeds))
	seeds = append(seeds, cf.Seeds...)

	for _, tmpl := range cf.SeedTemplates {
		expanded, err := tmpl.Expand()
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, expanded...)
	}

	return seeds, nil
}
