// Package compose generates application collateral from the stored
// profile: a short cover letter and a resume-vs-job match report.
package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
)

const (
	minJobDescription = 50

	// Cover letters carry more context than match scoring; scoring is
	// latency-sensitive so its context is tighter
	coverContextChars = 5000
	matchContextChars = 3000
)

// ErrJobDescriptionTooShort means there is not enough posting text to
// work from
var ErrJobDescriptionTooShort = errors.New("job description too short")

// Inferrer is the slice of the AI chain compose needs
type Inferrer interface {
	Infer(ctx context.Context, req *ai.Request) (string, error)
}

// Composer writes cover letters and match reports
type Composer struct {
	ai  Inferrer
	log logging.Tagged
}

// New creates a composer over an AI chain
func New(inferrer Inferrer) *Composer {
	return &Composer{
		ai:  inferrer,
		log: logging.WithTag("Compose"),
	}
}

// CoverLetter writes a short first-person outreach message for the
// given posting
func (c *Composer) CoverLetter(ctx context.Context, prof *profile.Context, jobDescription string) (string, error) {
	if len(strings.TrimSpace(jobDescription)) < minJobDescription {
		return "", ErrJobDescriptionTooShort
	}

	name := prof.Personal.FullName()
	if name == "" {
		name = "Candidate"
	}
	title := prof.FirstExperience().Title
	if title == "" {
		title = "Professional"
	}

	prompt := fmt.Sprintf(`Role: YOU ARE %s, a %s.
Task: Write a personalized "Reach Out" message or Short Cover Letter for this job application.

JOB DESCRIPTION:
%s

MY RESUME / BACKGROUND:
%s

INSTRUCTIONS:
1. Write a 1st-person message from ME (%s) to the Hiring Team.
2. Structure:
   - Hook: "Hi team, I'm %s..."
   - Value: Mention 2 specific achievements or skills from my background that perfectly match this job.
   - Closing: "I'd love to discuss how I can help [Company Name]..."
3. Tone: Professional, enthusiastic, human (NOT robotic).
4. Length: 100-250 words (Substantial but concise).
5. NO placeholders like "[Insert Company]". If company name unknown, say "your team".
6. SIGN OFF: "Best,\n%s"

OUTPUT: Clean text only. No markdown.`,
		name, title,
		truncate(jobDescription, coverContextChars),
		truncate(prof.PromptContext(), coverContextChars),
		name, name, name)

	text, err := c.ai.Infer(ctx, &ai.Request{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("cover letter generation failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// MatchReport scores the profile against one posting
type MatchReport struct {
	Score          int      `json:"score"`
	Summary        string   `json:"summary"`
	MissingSkills  []string `json:"missingSkills"`
	MatchingSkills []string `json:"matchingSkills"`
}

// AnalyzeMatch compares the profile against the posting and returns a
// structured score
func (c *Composer) AnalyzeMatch(ctx context.Context, prof *profile.Context, jobDescription string) (*MatchReport, error) {
	if len(strings.TrimSpace(jobDescription)) < minJobDescription {
		return nil, ErrJobDescriptionTooShort
	}

	prompt := fmt.Sprintf(`Task: Compare Resume vs Job Description.
RETURN JSON ONLY.

JOB:
%s

RESUME:
%s

OUTPUT Format:
{
  "score": 0-100,
  "summary": "1 sentence summary",
  "missingSkills": ["skill1", "skill2"],
  "matchingSkills": ["skill1", "skill2"]
}`,
		truncate(jobDescription, matchContextChars),
		truncate(prof.PromptContext(), matchContextChars))

	text, err := c.ai.Infer(ctx, &ai.Request{Prompt: prompt, JSONMode: true})
	if err != nil {
		return nil, fmt.Errorf("match analysis failed: %w", err)
	}

	report, err := decodeReport(text)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Match score %d: %s", report.Score, report.Summary)
	return report, nil
}

// decodeReport pulls the JSON object out of the model text and clamps
// the score to 0-100
func decodeReport(text string) (*MatchReport, error) {
	s := strings.TrimSpace(text)
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("no JSON object in analysis output")
	}

	var report MatchReport
	if err := json.Unmarshal([]byte(s[first:last+1]), &report); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}
	return &report, nil
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
