// Package resume turns raw resume text into a structured profile by
// asking the AI chain for a JSON extraction and then repairing the
// shapes small models commonly get wrong.
package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jobfiller/jobfiller/internal/ai"
	"github.com/jobfiller/jobfiller/internal/logging"
	"github.com/jobfiller/jobfiller/internal/profile"
	"github.com/jobfiller/jobfiller/internal/sanitize"
)

const minResumeLength = 50

var (
	// ErrTooShort means the input is not a complete resume
	ErrTooShort = errors.New("resume text too short to parse")

	// ErrTemplateOutput means the model echoed the placeholder template
	// instead of extracting real values
	ErrTemplateOutput = errors.New("model returned template values, not resume data")
)

// Inferrer is the slice of the AI chain the parser needs
type Inferrer interface {
	Infer(ctx context.Context, req *ai.Request) (string, error)
}

// Parser extracts a profile from resume text
type Parser struct {
	ai  Inferrer
	log logging.Tagged
}

// New creates a parser over an AI chain
func New(inferrer Inferrer) *Parser {
	return &Parser{
		ai:  inferrer,
		log: logging.WithTag("Resume"),
	}
}

// extractionPrompt keeps placeholders abstract. Small models copy
// concrete example values into their output, so the template never
// shows a plausible name or email.
func extractionPrompt(text string) string {
	return `TASK: Extract information from the following resume into JSON.

RESUME TEXT:
` + text + `

Extract into exactly this structure:
{
  "personal": {
    "firstName": "<first name from resume>",
    "lastName": "<last name from resume>",
    "email": "<email from resume>",
    "phone": "<phone from resume>",
    "linkedIn": "<linkedin url or empty string>",
    "github": "<github url or empty string>",
    "portfolio": "<portfolio url or empty string>"
  },
  "address": {
    "city": "<city>",
    "state": "<state>",
    "country": "<country>"
  },
  "summary": "<professional summary from resume>",
  "experience": [
    {
      "company": "<company name>",
      "title": "<job title>",
      "location": "<location>",
      "startDate": "<start date>",
      "endDate": "<end date or Present>",
      "description": "<job description>"
    }
  ],
  "education": [
    {
      "institution": "<school name>",
      "degree": "<degree>",
      "field": "<field of study>",
      "startDate": "<start year>",
      "endDate": "<end year>",
      "gpa": "<gpa or empty string>"
    }
  ],
  "skills": {
    "technical": ["<skill>"],
    "languages": ["<language>"],
    "soft": ["<soft skill>"]
  }
}

Return ONLY the JSON with actual values from the resume. No explanations.`
}

// Parse sends the resume text through the AI chain and returns the
// repaired profile
func (p *Parser) Parse(ctx context.Context, text string) (*profile.Context, error) {
	if len(strings.TrimSpace(text)) < minResumeLength {
		return nil, ErrTooShort
	}

	raw, err := p.ai.Infer(ctx, &ai.Request{
		Prompt:   extractionPrompt(text),
		JSONMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("resume extraction failed: %w", err)
	}

	parsed, err := decode(raw)
	if err != nil {
		return nil, err
	}

	prof := Normalize(parsed)
	if !hasRealData(prof) {
		return nil, ErrTemplateOutput
	}

	p.log.Infof("Parsed resume: %s, %d experience, %d education entries",
		prof.Personal.FullName(), len(prof.Experience), len(prof.Education))
	return prof, nil
}

// rawResume mirrors the extraction template but tolerates the alias
// key names different models emit
type rawResume struct {
	// Models sometimes nest identity under "profile" instead
	Profile    *rawResume      `json:"profile,omitempty"`
	Personal   rawPersonal     `json:"personal"`
	Name       string          `json:"name,omitempty"`
	Email      string          `json:"email,omitempty"`
	Address    profile.Address `json:"address"`
	Summary    string          `json:"summary"`
	Experience []rawExperience `json:"experience"`
	Education  []rawEducation  `json:"education"`
	Skills     json.RawMessage `json:"skills"`
}

type rawPersonal struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedIn"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

type rawExperience struct {
	Company     string `json:"company"`
	Employer    string `json:"employer,omitempty"`
	Title       string `json:"title"`
	Position    string `json:"position,omitempty"`
	Role        string `json:"role,omitempty"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type rawEducation struct {
	Institution string `json:"institution"`
	University  string `json:"university,omitempty"`
	School      string `json:"school,omitempty"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Major       string `json:"major,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa"`
}

// decode locates the JSON object inside the model output and parses it
func decode(raw string) (*rawResume, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	s = s[first : last+1]

	var parsed rawResume
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return &parsed, nil
}

// Normalize folds alias keys, repairs name splits, and cleans noisy
// values the way a human reviewing the extraction would
func Normalize(raw *rawResume) *profile.Context {
	// Some models wrap everything in a "profile" object
	if raw.Profile != nil {
		inner := *raw.Profile
		if len(inner.Experience) == 0 {
			inner.Experience = raw.Experience
		}
		if len(inner.Education) == 0 {
			inner.Education = raw.Education
		}
		if len(inner.Skills) == 0 {
			inner.Skills = raw.Skills
		}
		raw = &inner
	}

	prof := &profile.Context{
		Address: raw.Address,
		Summary: strings.TrimSpace(raw.Summary),
	}

	first, last := repairName(raw.Personal.FirstName, raw.Personal.LastName)
	if first == "" && last == "" {
		full := raw.Personal.FullName
		if full == "" {
			full = raw.Name
		}
		first, last = splitFullName(full)
	}
	prof.Personal = profile.Personal{
		FirstName: first,
		LastName:  last,
		Email:     firstNonEmpty(raw.Personal.Email, raw.Email),
		Phone:     strings.TrimSpace(raw.Personal.Phone),
		LinkedIn:  cleanURL(raw.Personal.LinkedIn),
		GitHub:    cleanURL(raw.Personal.GitHub),
		Portfolio: cleanURL(raw.Personal.Portfolio),
	}

	for _, e := range raw.Experience {
		exp := profile.Experience{
			Company:     firstNonEmpty(e.Company, e.Employer),
			Title:       sanitize.CleanJobTitle(firstNonEmpty(e.Title, e.Position, e.Role)),
			Location:    strings.TrimSpace(e.Location),
			StartDate:   strings.TrimSpace(e.StartDate),
			EndDate:     strings.TrimSpace(e.EndDate),
			Current:     e.Current,
			Description: strings.TrimSpace(e.Description),
		}
		if isPresent(exp.EndDate) {
			exp.EndDate = ""
			exp.Current = true
		}
		if exp.Company == "" && exp.Title == "" {
			continue
		}
		prof.Experience = append(prof.Experience, exp)
	}

	for _, e := range raw.Education {
		edu := profile.Education{
			Institution: firstNonEmpty(e.Institution, e.University, e.School),
			Degree:      strings.TrimSpace(e.Degree),
			Field:       firstNonEmpty(e.Field, e.Major),
			StartDate:   strings.TrimSpace(e.StartDate),
			EndDate:     strings.TrimSpace(e.EndDate),
			GPA:         strings.TrimSpace(e.GPA),
		}
		if edu.Institution == "" && edu.Degree == "" {
			continue
		}
		prof.Education = append(prof.Education, edu)
	}

	prof.Skills = decodeSkills(raw.Skills)

	scrubTemplateValues(prof)
	return prof
}

// repairName fixes the split small models get wrong: the whole name in
// firstName with lastName empty, duplicated, or repeated as a suffix
func repairName(first, last string) (string, string) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)

	if !strings.Contains(first, " ") {
		return first, last
	}

	lastLower := strings.ToLower(last)
	duplicated := last == "" || strings.EqualFold(first, last) ||
		(len(last) > 2 && strings.HasSuffix(strings.ToLower(first), lastLower))
	if !duplicated {
		return first, last
	}

	if last != "" && !strings.EqualFold(first, last) {
		// "Akash Ranjan" / "Ranjan": strip the overlap
		trimmed := strings.TrimSpace(first[:len(first)-len(last)])
		if trimmed != "" {
			return trimmed, last
		}
	}
	return splitFullName(first)
}

// splitFullName breaks a full name on the last space
func splitFullName(full string) (string, string) {
	full = strings.TrimSpace(full)
	idx := strings.LastIndex(full, " ")
	if idx == -1 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}

// decodeSkills accepts both the categorized object and the flat array
// some models return
func decodeSkills(raw json.RawMessage) profile.Skills {
	if len(raw) == 0 {
		return profile.Skills{}
	}

	var grouped profile.Skills
	if err := json.Unmarshal(raw, &grouped); err == nil {
		return grouped
	}

	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return profile.Skills{Technical: flat}
	}
	return profile.Skills{}
}

// isPresent recognizes the open-ended end dates models emit
func isPresent(date string) bool {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "present", "current", "now", "ongoing", "till date", "to date":
		return true
	}
	return false
}

// isTemplate flags placeholder values echoed from the prompt template
func isTemplate(v string) bool {
	return strings.Contains(v, "<") || strings.Contains(v, ">") ||
		strings.Contains(strings.ToLower(v), "example.com")
}

// scrubTemplateValues blanks any field the model filled with a
// placeholder instead of resume data
func scrubTemplateValues(prof *profile.Context) {
	clean := func(v *string) {
		if isTemplate(*v) {
			*v = ""
		}
	}
	clean(&prof.Personal.FirstName)
	clean(&prof.Personal.LastName)
	clean(&prof.Personal.Email)
	clean(&prof.Personal.Phone)
	clean(&prof.Personal.LinkedIn)
	clean(&prof.Personal.GitHub)
	clean(&prof.Personal.Portfolio)
	clean(&prof.Address.City)
	clean(&prof.Address.State)
	clean(&prof.Address.Country)
	clean(&prof.Summary)
	for i := range prof.Experience {
		clean(&prof.Experience[i].Company)
		clean(&prof.Experience[i].Title)
		clean(&prof.Experience[i].Location)
		clean(&prof.Experience[i].Description)
	}
	for i := range prof.Education {
		clean(&prof.Education[i].Institution)
		clean(&prof.Education[i].Degree)
		clean(&prof.Education[i].Field)
	}
}

// hasRealData reports whether the extraction produced anything beyond
// template echoes
func hasRealData(prof *profile.Context) bool {
	if prof.Personal.FirstName != "" || prof.Personal.LastName != "" {
		return true
	}
	return strings.Contains(prof.Personal.Email, "@")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func cleanURL(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "null") || strings.EqualFold(v, "n/a") || strings.EqualFold(v, "none") {
		return ""
	}
	return v
}
