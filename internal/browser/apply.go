package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/jobfiller/jobfiller/internal/resolver"
)

// degreeMap folds common degree abbreviations onto the words select
// options actually use
var degreeMap = map[string]string{
	"bs": "bachelor", "b.s.": "bachelor", "b.s": "bachelor", "btech": "bachelor",
	"ms": "master", "m.s.": "master", "m.s": "master", "mtech": "master",
	"phd": "doctor", "ph.d": "doctor", "doctorate": "doctor",
}

var yesPatterns = []string{"yes", "true", "agree", "accept", "confirm"}
var noPatterns = []string{"no", "false", "disagree", "decline"}

// Apply writes one resolved value into the live form. The boolean
// reports whether anything was actually written; false with nil error
// means the value had no sensible target (e.g. no option matched).
func (s *Session) Apply(ctx context.Context, field *resolver.FieldDescriptor, value string) (bool, error) {
	if value == "" || value == resolver.SkipValue {
		return false, nil
	}

	locator, err := s.locate(field)
	if err != nil {
		return false, err
	}

	switch {
	case field.IsButton || field.Type == "button":
		if value != "CLICK" {
			return false, nil
		}
		if err := locator.Click(); err != nil {
			return false, fmt.Errorf("click failed: %w", err)
		}
		return true, nil

	case field.Type == "select":
		option, ok := MatchOption(field.Options, value)
		if !ok {
			s.log.Warnf("No option matches %q for %q", value, field.Label)
			return false, nil
		}
		if _, err := locator.SelectOption(playwright.SelectOptionValues{
			Labels: &[]string{option},
		}); err != nil {
			return false, fmt.Errorf("select failed: %w", err)
		}
		return true, nil

	case field.Type == "radio":
		return s.applyRadio(field, value)

	case field.Type == "checkbox":
		if !MatchesYes(value) {
			return false, nil
		}
		if err := locator.Check(); err != nil {
			return false, fmt.Errorf("check failed: %w", err)
		}
		return true, nil

	default:
		if err := locator.Fill(value); err != nil {
			return false, fmt.Errorf("fill failed: %w", err)
		}
		return true, nil
	}
}

// applyRadio picks the group member whose label best matches the
// answer: containment either way first, then yes/no pattern matching
func (s *Session) applyRadio(field *resolver.FieldDescriptor, value string) (bool, error) {
	if field.Name == "" {
		return false, nil
	}

	group := s.page.Locator(fmt.Sprintf(`input[type="radio"][name=%q]`, field.Name))
	count, err := group.Count()
	if err != nil || count == 0 {
		return false, err
	}

	labels := make([]string, count)
	for i := 0; i < count; i++ {
		el := group.Nth(i)
		if text, err := el.Evaluate(`el => (el.labels && el.labels[0] ? el.labels[0].innerText : el.value) || ''`, nil); err == nil {
			if str, ok := text.(string); ok {
				labels[i] = strings.TrimSpace(str)
			}
		}
	}

	idx, ok := MatchRadio(labels, value)
	if !ok {
		return false, nil
	}
	if err := group.Nth(idx).Check(); err != nil {
		return false, fmt.Errorf("radio check failed: %w", err)
	}
	return true, nil
}

// locate finds the control by id, then name, then label text
func (s *Session) locate(field *resolver.FieldDescriptor) (playwright.Locator, error) {
	if field.ID != "" {
		return s.page.Locator("#" + field.ID), nil
	}
	if field.Name != "" {
		return s.page.Locator(fmt.Sprintf(`[name=%q]`, field.Name)), nil
	}
	if field.Label != "" {
		return s.page.GetByLabel(field.Label), nil
	}
	return nil, fmt.Errorf("field has no locatable attribute: %+v", field)
}

// MatchOption finds the select option for a value: exact match, then
// containment either way, then degree-abbreviation folding.
func MatchOption(options []string, value string) (string, bool) {
	val := strings.ToLower(strings.TrimSpace(value))
	if val == "" {
		return "", false
	}

	for _, opt := range options {
		if strings.ToLower(opt) == val {
			return opt, true
		}
	}
	for _, opt := range options {
		optLower := strings.ToLower(opt)
		if strings.Contains(optLower, val) || strings.Contains(val, optLower) {
			return opt, true
		}
	}

	target := degreeMap[val]
	if target == "" {
		// "B.S. Computer Science" style values still carry the keyword
		for abbr, word := range degreeMap {
			if strings.Contains(val, abbr) {
				target = word
				break
			}
		}
	}
	if target != "" {
		for _, opt := range options {
			if strings.Contains(strings.ToLower(opt), target) {
				return opt, true
			}
		}
	}
	return "", false
}

// MatchRadio picks the radio option for an answer: exact label match,
// containment either way, then yes/no pattern families
func MatchRadio(labels []string, value string) (int, bool) {
	val := strings.ToLower(strings.TrimSpace(value))
	if val == "" {
		return 0, false
	}

	// Exact first so "female" never lands on "Male" via containment
	for i, label := range labels {
		if strings.ToLower(label) == val {
			return i, true
		}
	}
	for i, label := range labels {
		l := strings.ToLower(label)
		if l == "" {
			continue
		}
		if strings.Contains(l, val) || strings.Contains(val, l) {
			return i, true
		}
	}

	if matchesAny(val, yesPatterns) {
		for i, label := range labels {
			if matchesAny(strings.ToLower(label), yesPatterns) {
				return i, true
			}
		}
	}
	if matchesAny(val, noPatterns) {
		for i, label := range labels {
			if matchesAny(strings.ToLower(label), noPatterns) {
				return i, true
			}
		}
	}
	return 0, false
}

// MatchesYes reports whether an answer is affirmative
func MatchesYes(value string) bool {
	return matchesAny(strings.ToLower(strings.TrimSpace(value)), yesPatterns)
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
