package resolver

import (
	"sort"
	"strings"

	"github.com/jobfiller/jobfiller/internal/profile"
)

// directMappings is the static synonym table for tier-2 resolution.
// Keys are alphanumeric-normalized, so "first_name", "First Name" and
// "firstName" all land on the same entry. Values pull straight from
// the profile; an empty pull means the synonym matched but the profile
// has nothing there, and the search continues.
var directMappings = map[string]func(*profile.Context) string{
	// Personal
	"firstname": func(p *profile.Context) string { return p.Personal.FirstName },
	"fname":     func(p *profile.Context) string { return p.Personal.FirstName },
	"givenname": func(p *profile.Context) string { return p.Personal.FirstName },

	"lastname":   func(p *profile.Context) string { return p.Personal.LastName },
	"lname":      func(p *profile.Context) string { return p.Personal.LastName },
	"surname":    func(p *profile.Context) string { return p.Personal.LastName },
	"familyname": func(p *profile.Context) string { return p.Personal.LastName },

	// Composite: first + last, empty parts omitted from the join
	"fullname": func(p *profile.Context) string { return p.Personal.FullName() },
	"name":     func(p *profile.Context) string { return p.Personal.FullName() },

	"email":        func(p *profile.Context) string { return p.Personal.Email },
	"emailaddress": func(p *profile.Context) string { return p.Personal.Email },

	"phone":        func(p *profile.Context) string { return p.Personal.Phone },
	"phonenumber":  func(p *profile.Context) string { return p.Personal.Phone },
	"mobile":       func(p *profile.Context) string { return p.Personal.Phone },
	"mobilenumber": func(p *profile.Context) string { return p.Personal.Phone },
	"telephone":    func(p *profile.Context) string { return p.Personal.Phone },
	"cell":         func(p *profile.Context) string { return p.Personal.Phone },

	"linkedin":        func(p *profile.Context) string { return p.Personal.LinkedIn },
	"linkedinurl":     func(p *profile.Context) string { return p.Personal.LinkedIn },
	"linkedinprofile": func(p *profile.Context) string { return p.Personal.LinkedIn },

	"github":    func(p *profile.Context) string { return p.Personal.GitHub },
	"githuburl": func(p *profile.Context) string { return p.Personal.GitHub },

	"portfolio":       func(p *profile.Context) string { return p.Personal.Portfolio },
	"portfoliourl":    func(p *profile.Context) string { return p.Personal.Portfolio },
	"website":         func(p *profile.Context) string { return p.Personal.Portfolio },
	"personalwebsite": func(p *profile.Context) string { return p.Personal.Portfolio },

	// Address
	"street":        func(p *profile.Context) string { return p.Address.Street },
	"streetaddress": func(p *profile.Context) string { return p.Address.Street },
	"address":       func(p *profile.Context) string { return p.Address.Street },
	"addressline1":  func(p *profile.Context) string { return p.Address.Street },

	"city": func(p *profile.Context) string { return p.Address.City },
	"town": func(p *profile.Context) string { return p.Address.City },

	"state":    func(p *profile.Context) string { return p.Address.State },
	"province": func(p *profile.Context) string { return p.Address.State },
	"region":   func(p *profile.Context) string { return p.Address.State },

	"zip":        func(p *profile.Context) string { return p.Address.Zip },
	"zipcode":    func(p *profile.Context) string { return p.Address.Zip },
	"postalcode": func(p *profile.Context) string { return p.Address.Zip },
	"pincode":    func(p *profile.Context) string { return p.Address.Zip },

	"country": func(p *profile.Context) string { return p.Address.Country },

	// Summary
	"summary":             func(p *profile.Context) string { return p.Summary },
	"professionalsummary": func(p *profile.Context) string { return p.Summary },
	"about":               func(p *profile.Context) string { return p.Summary },
	"aboutme":             func(p *profile.Context) string { return p.Summary },
	"bio":                 func(p *profile.Context) string { return p.Summary },
	"introduction":        func(p *profile.Context) string { return p.Summary },

	// Education (most recent)
	"university":   func(p *profile.Context) string { return firstInstitution(p) },
	"college":      func(p *profile.Context) string { return firstInstitution(p) },
	"school":       func(p *profile.Context) string { return firstInstitution(p) },
	"institution":  func(p *profile.Context) string { return firstInstitution(p) },
	"degree":       func(p *profile.Context) string { return firstDegree(p) },
	"major":        func(p *profile.Context) string { return firstField(p) },
	"fieldofstudy": func(p *profile.Context) string { return firstField(p) },

	// Work experience (most recent)
	"company":      func(p *profile.Context) string { return firstCompany(p) },
	"employer":     func(p *profile.Context) string { return firstCompany(p) },
	"organization": func(p *profile.Context) string { return firstCompany(p) },
	"jobtitle":     func(p *profile.Context) string { return firstTitle(p) },
	"position":     func(p *profile.Context) string { return firstTitle(p) },
	"role":         func(p *profile.Context) string { return firstTitle(p) },
	"designation":  func(p *profile.Context) string { return firstTitle(p) },

	// Workday automation IDs
	"legalnamesectionfirstname":      func(p *profile.Context) string { return p.Personal.FirstName },
	"legalnamesectionlastname":       func(p *profile.Context) string { return p.Personal.LastName },
	"legalnamesectionmiddlename":     func(p *profile.Context) string { return p.Personal.MiddleName },
	"addresssectionaddressline1":     func(p *profile.Context) string { return p.Address.Street },
	"addresssectioncity":             func(p *profile.Context) string { return p.Address.City },
	"addresssectionpostalcode":       func(p *profile.Context) string { return p.Address.Zip },
	"addresssectioncountryregion":    func(p *profile.Context) string { return p.Address.State },
	"addresssectioncountry":          func(p *profile.Context) string { return p.Address.Country },
	"phonesectionphonenumber":        func(p *profile.Context) string { return p.Personal.Phone },
	"emailaddressemail":              func(p *profile.Context) string { return p.Personal.Email },
	"workexperiencesectionjobtitle":  func(p *profile.Context) string { return firstTitle(p) },
	"workexperiencesectioncompany":   func(p *profile.Context) string { return firstCompany(p) },
	"educationsectionschool":         func(p *profile.Context) string { return firstInstitution(p) },
	"educationsectiondegree":         func(p *profile.Context) string { return firstDegree(p) },
}

// mappingKeys holds the table keys longest-first, so "addressline1"
// wins over "address" and "firstname" over "name"
var mappingKeys = func() []string {
	keys := make([]string, 0, len(directMappings))
	for k := range directMappings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

func firstInstitution(p *profile.Context) string { return p.FirstEducation().Institution }
func firstDegree(p *profile.Context) string      { return p.FirstEducation().Degree }
func firstField(p *profile.Context) string       { return p.FirstEducation().Field }
func firstCompany(p *profile.Context) string     { return p.FirstExperience().Company }
func firstTitle(p *profile.Context) string       { return p.FirstExperience().Title }

// directMatch looks the field up in the synonym table. Terms are
// checked in attribute order; within one term longer keys win.
func directMatch(field *FieldDescriptor, prof *profile.Context) (string, bool) {
	for _, term := range field.searchTerms() {
		for _, key := range mappingKeys {
			if !strings.Contains(term, key) {
				continue
			}
			if value := directMappings[key](prof); value != "" {
				return value, true
			}
		}
	}
	return "", false
}
