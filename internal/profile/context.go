package profile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// maxQnAAnswerLen excludes oversized learned answers from the prompt
	maxQnAAnswerLen = 500
	// maxDescriptionLen truncates per-job descriptions in the prompt
	maxDescriptionLen = 200
)

// PromptContext serializes the profile into the plain-text block
// embedded in field-resolution prompts.
func (c *Context) PromptContext() string {
	var parts []string

	p := c.Personal
	if p.FirstName != "" || p.LastName != "" {
		parts = append(parts, fmt.Sprintf("Name: %s", p.FullName()))
	}
	if p.Email != "" {
		parts = append(parts, fmt.Sprintf("Email: %s", p.Email))
	}
	if p.Phone != "" {
		parts = append(parts, fmt.Sprintf("Phone: %s", p.Phone))
	}
	if p.LinkedIn != "" {
		parts = append(parts, fmt.Sprintf("LinkedIn: %s", p.LinkedIn))
	}
	if p.GitHub != "" {
		parts = append(parts, fmt.Sprintf("GitHub: %s", p.GitHub))
	}

	a := c.Address
	if a.City != "" || a.State != "" || a.Country != "" {
		parts = append(parts, fmt.Sprintf("Location: %s, %s, %s", a.City, a.State, a.Country))
	}

	if c.Summary != "" {
		parts = append(parts, fmt.Sprintf("Professional Summary: %s", c.Summary))
	}

	if len(c.Experience) > 0 {
		parts = append(parts, "\nWork Experience:")
		for _, exp := range c.Experience {
			end := exp.EndDate
			if exp.Current {
				end = "Present"
			}
			parts = append(parts, fmt.Sprintf("- %s at %s (%s - %s)", exp.Title, exp.Company, exp.StartDate, end))
			if exp.Description != "" {
				desc := exp.Description
				if len(desc) > maxDescriptionLen {
					cut := maxDescriptionLen
					for cut > 0 && !utf8.RuneStart(desc[cut]) {
						cut--
					}
					desc = desc[:cut] + "..."
				}
				parts = append(parts, "  "+desc)
			}
		}
	}

	if len(c.Education) > 0 {
		parts = append(parts, "\nEducation:")
		for _, edu := range c.Education {
			parts = append(parts, fmt.Sprintf("- %s in %s from %s", edu.Degree, edu.Field, edu.Institution))
		}
	}

	if len(c.Skills.Technical) > 0 {
		parts = append(parts, fmt.Sprintf("\nTechnical Skills: %s", strings.Join(c.Skills.Technical, ", ")))
	}
	if len(c.Skills.Languages) > 0 {
		parts = append(parts, fmt.Sprintf("Languages: %s", strings.Join(c.Skills.Languages, ", ")))
	}

	// Learned Q&A rides along as persistent context
	if len(c.QnA) > 0 {
		parts = append(parts, "\nAdditional Known Details (User Preferences):")
		for _, item := range c.QnA {
			if item.Question == "" || item.Answer == "" || len(item.Answer) >= maxQnAAnswerLen {
				continue
			}
			parts = append(parts, fmt.Sprintf("- %s: %s", item.Question, item.Answer))
		}
	}

	return strings.Join(parts, "\n")
}

// NormalizeQuestion canonicalizes a question for dedupe: lowercase with
// runs of whitespace collapsed to single spaces.
func NormalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
