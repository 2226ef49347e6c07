// Package resolver maps one form field to a value using a tiered
// strategy: learned answers, then a static synonym table, then AI.
package resolver

import "strings"

// FieldDescriptor is an immutable snapshot of one fillable form
// control, produced by the browser scanner.
type FieldDescriptor struct {
	Label       string   `json:"label"`
	Name        string   `json:"name,omitempty"`
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	AriaLabel   string   `json:"ariaLabel,omitempty"`
	NearbyText  string   `json:"nearbyText,omitempty"`
	Options     []string `json:"options,omitempty"`
	IsButton    bool     `json:"isButton,omitempty"`
}

// Method tags how a value was resolved
type Method string

const (
	MethodLearned Method = "learned"
	MethodDirect  Method = "direct"
	MethodAI      Method = "ai"
	MethodSkip    Method = "skip"
)

// SkipValue is the sentinel meaning "no value, leave the field alone".
// The apply layer must never write it into a form.
const SkipValue = "SKIP"

// ResolutionResult is the outcome for one field
type ResolutionResult struct {
	Value  string `json:"value"`
	Method Method `json:"method"`
}

// Skipped reports whether the result carries no usable value
func (r ResolutionResult) Skipped() bool {
	return r.Value == SkipValue || r.Value == ""
}

// CleanLabel normalizes a field label for matching: lowercased,
// trimmed, required-marker asterisk removed
func CleanLabel(label string) string {
	l := strings.TrimSpace(strings.ToLower(label))
	l = strings.TrimSuffix(l, "*")
	return strings.TrimSpace(l)
}

// alnumOnly strips everything but letters and digits, lowercased.
// "First Name *" and "first_name" both collapse to "firstname".
func alnumOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// searchTerms collects the field attributes worth matching against,
// alphanumeric-normalized. Order matters when attributes hit different
// table entries: label, then name, then placeholder, with id and
// aria-label as trailing fallbacks.
func (f *FieldDescriptor) searchTerms() []string {
	var terms []string
	for _, s := range []string{f.Label, f.Name, f.Placeholder, f.ID, f.AriaLabel} {
		if t := alnumOnly(s); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
