package profile

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPromptContext(t *testing.T) {
	c := &Context{
		Personal: Personal{FirstName: "Akash", LastName: "Ranjan", Email: "a@b.com"},
		Address:  Address{City: "Bengaluru", State: "KA", Country: "India"},
		Experience: []Experience{
			{Company: "Acme Corp", Title: "Software Engineer", StartDate: "2021", Current: true},
		},
		Education: []Education{
			{Institution: "IIT Delhi", Degree: "B.Tech", Field: "Computer Science"},
		},
		Skills: Skills{Technical: []string{"Go", "SQL"}},
		QnA: []QnAEntry{
			{Question: "Notice period", Answer: "30 days"},
		},
	}

	out := c.PromptContext()
	assert.Contains(t, out, "Name: Akash Ranjan")
	assert.Contains(t, out, "Location: Bengaluru, KA, India")
	assert.Contains(t, out, "Software Engineer at Acme Corp (2021 - Present)")
	assert.Contains(t, out, "B.Tech in Computer Science from IIT Delhi")
	assert.Contains(t, out, "Technical Skills: Go, SQL")
	assert.Contains(t, out, "- Notice period: 30 days")
}

func TestPromptContextOmitsEmptySections(t *testing.T) {
	out := (&Context{Personal: Personal{FirstName: "Akash"}}).PromptContext()
	assert.Equal(t, "Name: Akash", out)
}

func TestPromptContextSkipsOversizedAnswers(t *testing.T) {
	c := &Context{
		Personal: Personal{FirstName: "Akash"},
		QnA: []QnAEntry{
			{Question: "Essay", Answer: strings.Repeat("x", 600)},
			{Question: "Notice period", Answer: "30 days"},
		},
	}

	out := c.PromptContext()
	assert.NotContains(t, out, "Essay")
	assert.Contains(t, out, "Notice period")
}

func TestPromptContextTruncatesDescriptionOnRuneBoundary(t *testing.T) {
	c := &Context{
		Personal: Personal{FirstName: "Akash"},
		Experience: []Experience{
			// The odd leading byte lands the cut point mid-rune
			{Company: "Acme", Title: "Engineer", Description: "x" + strings.Repeat("é", 150)},
		},
	}

	out := c.PromptContext()
	assert.True(t, utf8.ValidString(out), "truncation must not split a rune")
	assert.Contains(t, out, "...")
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Akash Ranjan", Personal{FirstName: "Akash", LastName: "Ranjan"}.FullName())
	assert.Equal(t, "Akash", Personal{FirstName: "Akash"}.FullName())
	assert.Equal(t, "Ranjan", Personal{LastName: "Ranjan"}.FullName())
	assert.Equal(t, "", Personal{}.FullName())
}

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, "notice period", NormalizeQuestion("  NOTICE   Period "))
	assert.Equal(t, "", NormalizeQuestion("   "))
}
