package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// notDelivered is the DRPS period value for courses skipped this session.
const notDelivered = "Not delivered this year"

// notEntered is the DRPS placeholder for fields the school never filled in.
const notEntered = "Not entered"

// Course is the canonical record for one DRPS course offering. Scraper output
// drifted across runs — school vs school_name, level vs credit_level,
// bullet_points as a newline-joined string vs an array — so every variant is
// folded into this one shape at decode time. Nothing downstream branches on
// field-name variants.
type Course struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	URL          string   `json:"url,omitempty"`
	School       string   `json:"school_name,omitempty"`
	College      string   `json:"college,omitempty"`
	Subject      string   `json:"subject,omitempty"`
	CreditLevel  string   `json:"credit_level,omitempty"`
	Credits      string   `json:"credits,omitempty"`
	Period       string   `json:"period,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Delivery     string   `json:"delivery,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Description  string   `json:"course_description,omitempty"`
	AcademicYear string   `json:"academic_year,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	BulletPoints []string `json:"bullet_points,omitempty"`
	Sample       bool     `json:"sample,omitempty"`

	// Popularity overlay, merged in from cohort data when present.
	Quota           *int     `json:"quota,omitempty"`
	CohortSize      *int     `json:"cohort_size,omitempty"`
	PercentFull     *float64 `json:"percent_full,omitempty"`
	PopularityScore *float64 `json:"popularity_score,omitempty"`
	Campuses        []string `json:"campuses,omitempty"`
}

// courseAlias carries every field-name variant observed in scraped files.
type courseAlias struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	School       string   `json:"school"`
	SchoolName   string   `json:"school_name"`
	College      string   `json:"college"`
	Subject      string   `json:"subject"`
	Level        string   `json:"level"`
	CreditLevel  string   `json:"credit_level"`
	Credits      string   `json:"credits"`
	Period       string   `json:"period"`
	Availability string   `json:"availability"`
	Delivery     string   `json:"delivery"`
	Summary      string   `json:"summary"`
	Description  string   `json:"course_description"`
	AcademicYear string   `json:"academic_year"`
	Keywords     []string `json:"keywords"`
	BulletPoints bullets  `json:"bullet_points"`
	Bulletpoints bullets  `json:"bulletpoints"`
	Sample       bool     `json:"sample"`

	Quota           *int     `json:"quota"`
	CohortSize      *int     `json:"cohort_size"`
	PercentFull     *float64 `json:"percent_full"`
	PopularityScore *float64 `json:"popularity_score"`
	Campuses        []string `json:"campuses"`
}

// bullets accepts both forms the enrichment scripts produced: a JSON array of
// strings, or one string with newline-separated "• " lines.
type bullets []string

func (b *bullets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = nil
		return nil
	}
	if data[0] == '[' {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*b = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	*b = out
	return nil
}

// UnmarshalJSON normalises a raw scraped record into the canonical shape.
func (c *Course) UnmarshalJSON(data []byte) error {
	var a courseAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Course{
		Code:            strings.TrimSpace(a.Code),
		Name:            firstNonEmpty(a.Name, a.Title),
		URL:             a.URL,
		School:          firstNonEmpty(a.SchoolName, a.School),
		College:         a.College,
		Subject:         a.Subject,
		CreditLevel:     firstNonEmpty(a.CreditLevel, a.Level),
		Credits:         strings.TrimSpace(a.Credits),
		Period:          a.Period,
		Availability:    a.Availability,
		Delivery:        a.Delivery,
		Summary:         a.Summary,
		Description:     a.Description,
		AcademicYear:    a.AcademicYear,
		Keywords:        a.Keywords,
		BulletPoints:    firstNonEmptySlice(a.BulletPoints, a.Bulletpoints),
		Sample:          a.Sample,
		Quota:           a.Quota,
		CohortSize:      a.CohortSize,
		PercentFull:     a.PercentFull,
		PopularityScore: a.PopularityScore,
		Campuses:        a.Campuses,
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstNonEmptySlice(vals ...bullets) []string {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

var (
	scqfPattern = regexp.MustCompile(`(?i)scqf\s*level\s*(\d+)`)
	yearPattern = regexp.MustCompile(`(?i)year\s*(\d)`)
)

// scqfYear approximates the academic year a course sits in when the credit
// level text carries no explicit "Year N" tag. Levels 11 and up are taught
// postgraduate stages, recorded here as year 5.
var scqfYear = map[int]int{
	7:  1,
	8:  1,
	9:  2,
	10: 3,
	11: 5,
	12: 5,
}

// SCQFLevel parses the numeric SCQF level out of the credit level text.
// Returns 0 when none is present.
func (c Course) SCQFLevel() int {
	m := scqfPattern.FindStringSubmatch(c.CreditLevel)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Year infers the academic year. An explicit "Year N" tag in the credit level
// wins; otherwise the SCQF level is mapped. Returns 0 when unknown.
func (c Course) Year() int {
	if m := yearPattern.FindStringSubmatch(c.CreditLevel); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return scqfYear[c.SCQFLevel()]
}

// Postgraduate reports whether the course is taught at postgraduate level.
func (c Course) Postgraduate() bool {
	if strings.Contains(strings.ToLower(c.CreditLevel), "postgraduate") {
		return true
	}
	return c.SCQFLevel() >= 11
}

// CreditValue parses the SCQF credit count. The scraped credits column is a
// free-text string and is occasionally non-numeric; ok is false in that case.
func (c Course) CreditValue() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Credits))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsAvailable reports whether the course runs this session.
func (c Course) IsAvailable() bool {
	return c.Period != notDelivered
}

// IsSample reports whether the record is debug/sample data rather than a real
// scraped course. Sample records always lose to real ones at dedup time.
func (c Course) IsSample() bool {
	return c.Sample || strings.HasPrefix(c.Code, "SAMPLE")
}

// HasDescription reports whether the record carries a usable description.
// DRPS fills unset fields with "Not entered".
func (c Course) HasDescription() bool {
	d := strings.TrimSpace(c.Description)
	return d != "" && d != notEntered
}

// DedupKey is the identity used when collapsing duplicate records: the course
// code, or the name when a code is absent.
func (c Course) DedupKey() string {
	if c.Code != "" {
		return c.Code
	}
	return c.Name
}

// NotDelivered is the period value marking a course as unavailable this year.
func NotDelivered() string { return notDelivered }
