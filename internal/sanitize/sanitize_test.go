package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jobfiller/jobfiller/internal/profile"
)

func testProfile() *profile.Context {
	return &profile.Context{
		Personal: profile.Personal{FirstName: "John", LastName: "Doe"},
		Experience: []profile.Experience{
			{Title: "Software Engineer", Company: "Acme Corp"},
		},
		Education: []profile.Education{
			{Institution: "MIT", Degree: "BS", Field: "Computer Science"},
		},
	}
}

func TestCleanCosmetic(t *testing.T) {
	prof := testProfile()
	tests := []struct {
		name  string
		raw   string
		label string
		want  string
	}{
		{"plain", "Acme Corp", "Company", "Acme Corp"},
		{"quoted", `"Acme Corp"`, "Company", "Acme Corp"},
		{"single quoted", `'Acme Corp'`, "Company", "Acme Corp"},
		{"code fence", "```json\nAcme Corp\n```", "Company", "Acme Corp"},
		{"answer prefix", "Answer: Acme Corp", "Company", "Acme Corp"},
		{"value prefix", "value: 42", "Years of experience", "42"},
		{"own label echoed", "Company: Acme Corp", "Company", "Acme Corp"},
		{"empty", "", "Company", Skip},
		{"explicit skip", "SKIP", "Company", Skip},
		{"whitespace only", "   ", "Company", Skip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw, tt.label, prof))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	prof := testProfile()
	for _, raw := range []string{`"Acme Corp"`, "Answer: MIT", "John Doe"} {
		once := Clean(raw, "Company Name", prof)
		twice := Clean(once, "Company Name", prof)
		assert.Equal(t, once, twice, "raw=%q", raw)
	}
}

func TestNameHallucinationBlocked(t *testing.T) {
	prof := testProfile()
	tests := []struct {
		name  string
		raw   string
		label string
		want  string
	}{
		{"full name for school", "John Doe", "School Name", "MIT"},
		{"first name for school", "John", "University", "MIT"},
		{"full name for company", "John Doe", "Company Name", "Acme Corp"},
		{"last name for employer", "Doe", "Current Employer", "Acme Corp"},
		{"full name for major", "John Doe", "Field of Study", "Computer Science"},
		{"name fine for name field", "John Doe", "Full Name", "John Doe"},
		{"non-name passes", "Acme Corp", "Company Name", "Acme Corp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.raw, tt.label, prof)
			assert.Equal(t, tt.want, got)
			if tt.want != tt.raw {
				assert.NotEqual(t, tt.raw, got, "hallucinated name must never survive for %q", tt.label)
			}
		})
	}
}

func TestNameHallucinationNoFallbackSkips(t *testing.T) {
	prof := &profile.Context{Personal: profile.Personal{FirstName: "Jane", LastName: "Roe"}}
	assert.Equal(t, Skip, Clean("Jane Roe", "School Name", prof))
	assert.Equal(t, Skip, Clean("Jane Roe", "Company Name", prof))
}

func TestPincodeGuard(t *testing.T) {
	prof := testProfile()
	tests := []struct {
		label string
		raw   string
		want  string
	}{
		{"Company Name", "560037", Skip},
		{"School Name", "110001", Skip},
		{"City", "400050", Skip},
		{"Pincode", "560037", "560037"},
		{"Zip Code", "560037", "560037"},
		{"Company Name", "Acme Corp", "Acme Corp"},
		{"Company Name", "12345", "12345"}, // five digits is not a pincode
	}

	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw, tt.label, prof))
		})
	}
}

func TestTruncation(t *testing.T) {
	prof := testProfile()
	long := strings.Repeat("a", 500)
	got := Clean(long, "Summary", prof)
	assert.Len(t, got, 300)
}

func TestTruncationKeepsRunesIntact(t *testing.T) {
	prof := testProfile()
	// The odd leading byte lands the cut point mid-rune
	long := "x" + strings.Repeat("é", 200)
	got := Clean(long, "Summary", prof)
	assert.LessOrEqual(t, len(got), 300)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
}

func TestCleanJobTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Software Engineer - C++", "Software Engineer"},
		{"Backend Developer | Java, Spring", "Backend Developer"},
		{"SDE Python SQL", "SDE"},
		{"Engineering Manager", "Engineering Manager"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJobTitle(tt.in))
		})
	}
}

func TestTitleCleanedOnlyForTitleFields(t *testing.T) {
	prof := testProfile()
	assert.Equal(t, "Software Engineer", Clean("Software Engineer - C++", "Job Title", prof))
	assert.Equal(t, "Software Engineer - C++", Clean("Software Engineer - C++", "Summary", prof))
}
