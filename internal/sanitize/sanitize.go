// Package sanitize validates raw AI answers before they touch a form.
// Models echo labels, wrap answers in quotes or fences, and sometimes
// reuse the wrong profile attribute entirely; the pipeline here cleans
// the cosmetic noise and blocks the semantic mistakes.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
)

// Skip is the sentinel meaning "leave this field alone"
const Skip = "SKIP"

const maxAnswerLength = 300

var log = logging.WithTag("Sanitize")

// Labels whose answers must be an organization, school or field of
// study, never the applicant's own name
var orgKeywords = []string{
	"school", "university", "company", "employer",
	"faculty", "degree", "major", "study",
}

// Label-echo prefixes models prepend to answers
var echoPrefixes = []string{
	"field:", "label:", "value:", "answer:", "output:",
	"first name:", "last name:", "email:", "phone:",
	"job title:", "address:", "company:", "school:",
}

var (
	sixDigitRe = regexp.MustCompile(`^\d{6}$`)
	// Trailing skill lists appended to job titles, either after a
	// separator (" - C++", " | Java") or just space-joined
	titleSepSkillRe   = regexp.MustCompile(`(?i)\s*[-|/,]\s*(C\+\+|Java|Python|SQL|AWS|React|Node|Spring|Docker|Kubernetes|Linux|embedded|algorithms|data structures).*`)
	titleSpaceSkillRe = regexp.MustCompile(`(?i)\s+(C\+\+|Java|Python|SQL|AWS|React|Node).*`)
)

// Clean runs the full pipeline over a raw AI answer for the field with
// the given label. Every stage is idempotent; the result is either a
// usable value or Skip, never an error.
func Clean(raw, label string, prof *profile.Context) string {
	if raw == "" || raw == Skip {
		return Skip
	}

	clean := stripWrapping(raw)
	clean = stripEchoPrefixes(clean, label)

	if blocked, fallback := guardNameHallucination(clean, label, prof); blocked {
		if fallback == "" {
			return Skip
		}
		clean = fallback
	}

	if blocked := guardPincode(clean, label); blocked {
		return Skip
	}

	if len(clean) > maxAnswerLength {
		clean = truncate(clean, maxAnswerLength)
	}

	lbl := strings.ToLower(label)
	if strings.Contains(lbl, "title") || strings.Contains(lbl, "role") {
		clean = CleanJobTitle(clean)
	}

	clean = strings.TrimSpace(clean)
	if clean == "" {
		return Skip
	}
	return clean
}

// stripWrapping removes surrounding quotes and Markdown code fences
func stripWrapping(s string) string {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	clean = strings.Trim(clean, `"'`)
	return strings.TrimSpace(clean)
}

// stripEchoPrefixes removes "label:" style prefixes, including the
// field's own label
func stripEchoPrefixes(s, label string) string {
	clean := s
	lower := strings.ToLower(clean)
	for _, prefix := range echoPrefixes {
		if strings.HasPrefix(lower, prefix) {
			clean = strings.TrimSpace(clean[len(prefix):])
			lower = strings.ToLower(clean)
		}
	}

	if label != "" && strings.HasPrefix(strings.ToLower(clean), strings.ToLower(label)) {
		rest := strings.TrimSpace(clean[len(label):])
		if after, ok := strings.CutPrefix(rest, ":"); ok {
			clean = after
		}
	}
	return strings.TrimSpace(clean)
}

// guardNameHallucination blocks answers that are the applicant's own
// name when the label asks for a school, company, degree or field of
// study. When the profile carries a real value for that category it is
// substituted; otherwise the answer is dropped.
func guardNameHallucination(answer, label string, prof *profile.Context) (blocked bool, fallback string) {
	if prof == nil {
		return false, ""
	}

	ans := strings.ToLower(strings.TrimSpace(answer))
	first := strings.ToLower(prof.Personal.FirstName)
	last := strings.ToLower(prof.Personal.LastName)
	full := strings.ToLower(prof.Personal.FullName())

	isName := (first != "" && ans == first) ||
		(last != "" && ans == last) ||
		(full != "" && ans == full)
	if !isName {
		return false, ""
	}

	lbl := strings.ToLower(label)
	matched := false
	for _, kw := range orgKeywords {
		if strings.Contains(lbl, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return false, ""
	}

	log.Warnf("Blocked name %q offered for field %q", answer, label)

	switch {
	case strings.Contains(lbl, "school") || strings.Contains(lbl, "university"):
		if inst := prof.FirstEducation().Institution; inst != "" {
			return true, inst
		}
	case strings.Contains(lbl, "company") || strings.Contains(lbl, "employer"):
		if company := prof.FirstExperience().Company; company != "" {
			return true, company
		}
	case strings.Contains(lbl, "faculty") || strings.Contains(lbl, "major") || strings.Contains(lbl, "study"):
		if field := prof.FirstEducation().Field; field != "" {
			return true, field
		}
	}
	return true, ""
}

// guardPincode rejects a bare 6-digit number offered for an
// organization or city field
func guardPincode(answer, label string) bool {
	if !sixDigitRe.MatchString(strings.TrimSpace(answer)) {
		return false
	}
	lbl := strings.ToLower(label)
	for _, kw := range []string{"school", "university", "college", "company", "employer", "city"} {
		if strings.Contains(lbl, kw) {
			log.Warnf("Blocked pincode %q offered for field %q", answer, label)
			return true
		}
	}
	return false
}

// CleanJobTitle strips technology lists models like to append to
// titles ("Software Engineer - C++, Python")
func CleanJobTitle(title string) string {
	if title == "" {
		return ""
	}
	clean := titleSepSkillRe.ReplaceAllString(title, "")
	clean = titleSpaceSkillRe.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

// truncate cuts s to at most max bytes without splitting a rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
