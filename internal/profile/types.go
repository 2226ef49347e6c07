package profile

// Personal holds identity and contact details
type Personal struct {
	FirstName  string `json:"firstName" yaml:"first_name"`
	MiddleName string `json:"middleName,omitempty" yaml:"middle_name,omitempty"`
	LastName   string `json:"lastName" yaml:"last_name"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone" yaml:"phone"`
	LinkedIn   string `json:"linkedIn,omitempty" yaml:"linkedin,omitempty"`
	GitHub     string `json:"github,omitempty" yaml:"github,omitempty"`
	Portfolio  string `json:"portfolio,omitempty" yaml:"portfolio,omitempty"`
}

// FullName joins first and last name, omitting empty parts
func (p Personal) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Address holds the mailing address
type Address struct {
	Street  string `json:"street" yaml:"street"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Zip     string `json:"zip" yaml:"zip"`
	Country string `json:"country" yaml:"country"`
}

// Experience is one work-history entry, most recent first
type Experience struct {
	Company     string `json:"company" yaml:"company"`
	Title       string `json:"title" yaml:"title"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	StartDate   string `json:"startDate" yaml:"start_date"`
	EndDate     string `json:"endDate" yaml:"end_date"`
	Current     bool   `json:"current" yaml:"current"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Education is one education entry, most recent first
type Education struct {
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	StartDate   string `json:"startDate,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"endDate,omitempty" yaml:"end_date,omitempty"`
	GPA         string `json:"gpa,omitempty" yaml:"gpa,omitempty"`
}

// Skills groups skill lists by category
type Skills struct {
	Technical []string `json:"technical" yaml:"technical"`
	Languages []string `json:"languages" yaml:"languages"`
	Soft      []string `json:"soft" yaml:"soft"`
}

// QnAEntry is a learned question/answer pair captured from a prior
// manual fill. Uniqueness is by case-insensitive, whitespace-normalized
// question text; a duplicate question overwrites the answer.
type QnAEntry struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags,omitempty"`
}

// Context is the read-only profile snapshot passed into the resolution
// core for the duration of one session.
type Context struct {
	Personal       Personal     `json:"personal" yaml:"personal"`
	Address        Address      `json:"address" yaml:"address"`
	Summary        string       `json:"summary" yaml:"summary"`
	Experience     []Experience `json:"experience" yaml:"experience"`
	Education      []Education  `json:"education" yaml:"education"`
	Skills         Skills       `json:"skills" yaml:"skills"`
	QnA            []QnAEntry   `json:"qna" yaml:"qna"`
	JobDescription string       `json:"-" yaml:"-"` // Page context, set per session
}

// FirstExperience returns the most recent work entry, or a zero value
func (c *Context) FirstExperience() Experience {
	if len(c.Experience) > 0 {
		return c.Experience[0]
	}
	return Experience{}
}

// FirstEducation returns the most recent education entry, or a zero value
func (c *Context) FirstEducation() Education {
	if len(c.Education) > 0 {
		return c.Education[0]
	}
	return Education{}
}
