// Package categorizer assigns spending categories to vendor names using a
// static keyword table.
//
// Matching is exact first, then by keyword containment in table order. The
// containment step is first-match, not longest-match: a short keyword such as
// "ola" or "vi" can claim an unrelated vendor ("Coca Cola", "Local Services").
// That behaviour is kept so results stay comparable with existing data.
package categorizer

import (
	"strings"

	"expense-tracker/internal/domain"
)

// Rule maps a lowercase keyword to a category.
type Rule struct {
	Keyword  string `json:"keyword" yaml:"keyword"`
	Category string `json:"category" yaml:"category"`
}

// Categorizer is immutable after construction and safe for concurrent use.
type Categorizer struct {
	rules []Rule
	exact map[string]string
}

// New builds a Categorizer from rules in the given order. Keywords are
// normalised to trimmed lowercase; rules with a blank keyword or category are
// dropped, and for duplicate keywords the first one wins.
func New(rules []Rule) *Categorizer {
	c := &Categorizer{
		rules: make([]Rule, 0, len(rules)),
		exact: make(map[string]string, len(rules)),
	}
	for _, r := range rules {
		kw := normalize(r.Keyword)
		cat := strings.TrimSpace(r.Category)
		if kw == "" || cat == "" {
			continue
		}
		if _, dup := c.exact[kw]; dup {
			continue
		}
		c.exact[kw] = cat
		c.rules = append(c.rules, Rule{Keyword: kw, Category: cat})
	}
	return c
}

// Default returns a Categorizer over the built-in rule table.
func Default() *Categorizer {
	return New(defaultRules)
}

// Categorize returns the category for vendorName, or domain.OtherCategory.
func (c *Categorizer) Categorize(vendorName string) string {
	vendor := normalize(vendorName)
	if vendor == "" {
		return domain.OtherCategory
	}

	if cat, ok := c.exact[vendor]; ok {
		return cat
	}

	for _, r := range c.rules {
		if strings.Contains(vendor, r.Keyword) {
			return r.Category
		}
	}

	return domain.OtherCategory
}

// Mappings returns a copy of the rule table in match order.
func (c *Categorizer) Mappings() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Categories returns the distinct categories in first-appearance order,
// followed by domain.OtherCategory.
func (c *Categorizer) Categories() []string {
	seen := make(map[string]struct{}, 16)
	var out []string
	for _, r := range c.rules {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	if _, ok := seen[domain.OtherCategory]; !ok {
		out = append(out, domain.OtherCategory)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
