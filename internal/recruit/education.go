package recruit

import (
	"strings"
	"unicode"
)

// EducationLevel is an ordinal rank of an academic degree.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationHighSchool
	EducationAssociate
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

var educationNames = map[EducationLevel]string{
	EducationNone:       "none",
	EducationHighSchool: "high school",
	EducationAssociate:  "associate",
	EducationBachelor:   "bachelor",
	EducationMaster:     "master",
	EducationDoctorate:  "doctorate",
}

// Tokens are matched after lowercasing and dropping dots, so "M.S." becomes "ms".
var educationTokens = []struct {
	level  EducationLevel
	tokens []string
}{
	{EducationDoctorate, []string{"phd", "dphil", "edd", "md", "jd", "doctor", "doctorate", "doctoral"}},
	{EducationMaster, []string{"ms", "msc", "ma", "mba", "meng", "mfa", "mphil", "master", "masters"}},
	{EducationBachelor, []string{"bs", "bsc", "ba", "beng", "bfa", "bachelor", "bachelors"}},
	{EducationAssociate, []string{"associate", "associates", "aas", "as", "aa"}},
	{EducationHighSchool, []string{"ged", "highschool", "secondary"}},
}

func (l EducationLevel) String() string {
	if name, ok := educationNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseEducation maps free-text education ("M.S. Computer Science, Stanford",
// "MBA", "Ph.D. Statistics") onto the ranking table. Only the degree part
// before the first comma is read, so a trailing "school, city, ST" never
// counts. The highest degree mentioned wins; unrecognised text ranks as
// EducationNone.
func ParseEducation(s string) EducationLevel {
	degree, _, _ := strings.Cut(s, ",")
	text := strings.ToLower(strings.ReplaceAll(degree, ".", ""))
	text = strings.ReplaceAll(text, "high school", "highschool")

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}

	for _, entry := range educationTokens {
		for _, token := range entry.tokens {
			if seen[token] {
				return entry.level
			}
		}
	}

	return EducationNone
}
