package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOption(t *testing.T) {
	degrees := []string{"Select one", "Bachelor's Degree", "Master's Degree", "Doctorate (PhD)"}

	tests := []struct {
		name    string
		options []string
		value   string
		want    string
		ok      bool
	}{
		{"exact", []string{"India", "United States"}, "India", "India", true},
		{"case insensitive", []string{"India", "United States"}, "india", "India", true},
		{"option contains value", []string{"United States of America"}, "United States", "United States of America", true},
		{"value contains option", []string{"USA"}, "usa (remote)", "USA", true},
		{"degree bs", degrees, "BS", "Bachelor's Degree", true},
		{"degree btech", degrees, "BTech", "Bachelor's Degree", true},
		{"degree ms", degrees, "M.S.", "Master's Degree", true},
		{"degree phd", degrees, "PhD", "Doctorate (PhD)", true},
		{"degree embedded", degrees, "b.s. computer science", "Bachelor's Degree", true},
		{"no match", degrees, "Kindergarten", "", false},
		{"empty value", degrees, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchOption(tt.options, tt.value)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRadio(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		value  string
		want   int
		ok     bool
	}{
		{"direct containment", []string{"Male", "Female", "Prefer not to say"}, "female", 1, true},
		{"yes family", []string{"Yes", "No"}, "I agree", 0, true},
		{"no family", []string{"Yes", "No"}, "false", 1, true},
		{"yes exact", []string{"Yes", "No"}, "Yes", 0, true},
		{"no match", []string{"Red", "Blue"}, "Green", 0, false},
		{"empty", []string{"Yes", "No"}, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchRadio(tt.labels, tt.value)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMatchesYes(t *testing.T) {
	assert.True(t, MatchesYes("Yes"))
	assert.True(t, MatchesYes("I accept the terms"))
	assert.False(t, MatchesYes("No"))
	assert.False(t, MatchesYes(""))
}

func TestPickAdvance(t *testing.T) {
	tests := []struct {
		name       string
		candidates []advanceCandidate
		want       int
	}{
		{
			name: "submit beats free text",
			candidates: []advanceCandidate{
				{Index: 0, Visible: true, Text: "Continue reading", Tag: "button"},
				{Index: 1, Visible: true, Text: "Submit", Tag: "button", Type: "submit"},
			},
			want: 1,
		},
		{
			name: "invisible skipped",
			candidates: []advanceCandidate{
				{Index: 0, Visible: false, Text: "Apply", Tag: "button"},
				{Index: 1, Visible: true, Text: "Apply now", Tag: "button"},
			},
			want: 1,
		},
		{
			name: "link needs strong apply signal",
			candidates: []advanceCandidate{
				{Index: 0, Visible: true, Text: "Next steps for candidates", Tag: "a"},
				{Index: 1, Visible: true, Text: "Easy Apply", Tag: "a"},
			},
			want: 1,
		},
		{
			name: "long text ignored",
			candidates: []advanceCandidate{
				{Index: 0, Visible: true, Text: "Click here to continue to the next exciting step", Tag: "button"},
			},
			want: -1,
		},
		{
			name:       "nothing matches",
			candidates: []advanceCandidate{{Index: 0, Visible: true, Text: "Learn more", Tag: "button"}},
			want:       -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickAdvance(tt.candidates))
		})
	}
}
