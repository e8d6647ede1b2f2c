package model

// College groups schools, as scraped from the DRPS schools index.
type College struct {
	Name    string   `json:"name"`
	Schools []School `json:"schools,omitempty"`
}

// School is one teaching school within a college.
type School struct {
	Name     string    `json:"name"`
	URL      string    `json:"url,omitempty"`
	College  string    `json:"college,omitempty"`
	Schedule string    `json:"schedule,omitempty"`
	Code     string    `json:"code,omitempty"`
	Subjects []Subject `json:"subjects,omitempty"`
}

// Subject is a subject area listed under a school.
type Subject struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
	SchoolCode string `json:"school_code,omitempty"`
	College    string `json:"college,omitempty"`
}

// Popularity is the per-course overlay produced by the merge command from
// cohort and location data.
type Popularity struct {
	Code            string   `json:"code"`
	Quota           *int     `json:"quota"`
	CohortSize      *int     `json:"cohortSize"`
	PercentFull     *float64 `json:"percentFull"`
	PopularityScore *float64 `json:"popularityScore"`
	Campuses        []string `json:"campuses"`
}
