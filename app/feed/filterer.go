package feed

import (
	"fmt"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run applies source-level include/exclude rules to entries. Matching
// entries are dropped; a reason string is returned per dropped entry so the
// caller can surface it as a diagnostic. With no rules the input is returned
// unchanged.
func (f *Filterer) Run(entries []Entry, rules []FilterRule) ([]Entry, []string) {
	if len(rules) == 0 {
		return entries, nil
	}

	kept := make([]Entry, 0, len(entries))
	var dropped []string

	for _, entry := range entries {
		if excluded, reason := f.applyRules(entry, rules); excluded {
			dropped = append(dropped, fmt.Sprintf("Entry '%s' skipped: %s", entry.Title, reason))
			continue
		}
		kept = append(kept, entry)
	}

	return kept, dropped
}

func (f *Filterer) applyRules(entry Entry, rules []FilterRule) (bool, string) {
	for _, rule := range rules {
		value := f.getFieldValue(entry, rule.Field)

		for _, exclude := range rule.Excludes {
			if f.matches(value, exclude) {
				return true, fmt.Sprintf("excluded by %s filter: contains '%s'", rule.Field, exclude)
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if f.matches(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("excluded by %s filter: does not contain any of %v", rule.Field, rule.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matches(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(entry Entry, field string) string {
	switch field {
	case "title":
		return entry.Title
	case "summary":
		return entry.Summary
	case "link":
		return entry.Link
	default:
		return ""
	}
}
