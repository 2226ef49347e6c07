package resolver

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jobfiller/jobfiller/internal/profile"
)

const maxJobDescriptionChars = 3000

// BuildPrompt assembles the field-filling prompt: profile context, job
// description, target field metadata and a strict instruction block
// that keeps the model from mixing up profile sections.
func BuildPrompt(field *FieldDescriptor, prof *profile.Context) string {
	var b strings.Builder

	b.WriteString(`You are a form-filling assistant.
Your ONLY goal is to extract the correct value for the target field in JSON format.

CRITICAL INSTRUCTIONS (FOLLOW STRICTLY):
1. **LEARNED ANSWERS FIRST**: If "Additional Known Details" section contains a match, use it.

2. **STRICT CONTEXT SCOPE**:
   - If Label is **EXACTLY** "Name" or "Full Name" -> Combine "First Name" and "Last Name". NEVER use Company Name.
   - If Label **contains** "School Name" or "Company Name" -> Treat as Organization Name. DO NOT use Personal Name.
   - If Label involves **"Company", "Employer", "Work", "Experience", "Title", "Role", "Position"** -> Look ONLY in "Work Experience" section.
   - If Label involves **"School", "University", "College", "Degree", "Faculty"** -> Look ONLY in "Education" section.
   - If Label involves **"Email", "Phone", "Mobile"** -> Look ONLY in "Personal Information".
   - If Label involves **"Skill", "Stack", "Language", "Technologies"** -> Look ONLY in "Technical Skills" / "Languages".

3. **NEGATIVE CONSTRAINTS** (Prevent Hallucinations):
   - **NEVER use a 6-digit number (Pincode) for a Company/School/City.** return "SKIP".
   - **NEVER use Company Name for "Name" or "Faculty".**
   - **NEVER use Personal Name for "Company" or "School".**
   - **NEVER use Phone Number for "Email".**

4. **FORMAT RULES**:
   - **Email**: MUST contain "@".
   - **Name**: "First Name Last Name" (e.g. "John Doe").
   - **Phone**: International format.
   - **Dates**: YYYY-MM-DD.
   - **Salary**: Numbers only.

5. If no valid value is found, return "SKIP".

`)

	b.WriteString("CONTEXT (User Profile):\n")
	b.WriteString(prof.PromptContext())
	b.WriteString("\n\nJOB DESCRIPTION:\n")
	if jd := prof.JobDescription; jd != "" {
		if len(jd) > maxJobDescriptionChars {
			cut := maxJobDescriptionChars
			for cut > 0 && !utf8.RuneStart(jd[cut]) {
				cut--
			}
			jd = jd[:cut]
		}
		b.WriteString(jd)
	} else {
		b.WriteString("None provided")
	}

	b.WriteString("\n\nTARGET FIELD:\n")
	fmt.Fprintf(&b, "- Label: %q\n", field.Label)
	fmt.Fprintf(&b, "- Type: %s\n", field.Type)
	if field.NearbyText != "" {
		fmt.Fprintf(&b, "- Context: %s\n", field.NearbyText)
	}
	if len(field.Options) > 0 {
		fmt.Fprintf(&b, "- Options: %s\n", strings.Join(field.Options, ", "))
	}

	if extra := specificInstructions(field); extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}

	b.WriteString("\nYOUR RESPONSE (JSON):")
	return b.String()
}

// specificInstructions adds guidance for field types the model tends
// to get wrong
func specificInstructions(field *FieldDescriptor) string {
	if field.IsButton || field.Type == "button" {
		return `6. This is an "Add" button. If I have relevant data to add for this section (e.g. Work Experience, Education) and it seems appropriate to click to add another entry, respond with "CLICK". Otherwise "SKIP".`
	}
	if field.Type == "date" || field.Type == "month" || strings.Contains(strings.ToLower(field.Label), "date") {
		return `6. For dates, use the standard format YYYY-MM-DD unless the placeholder suggests otherwise. If the field asks for "Month" or "Year" specifically, provide only that.`
	}
	return ""
}
