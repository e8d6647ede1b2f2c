package catalog

import (
	"strings"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

// Course levels accepted by Criteria.CourseLevel.
const (
	LevelUndergraduate = "undergraduate"
	LevelPostgraduate  = "postgraduate"
)

// Delivery methods accepted by Criteria.DeliveryMethod.
const (
	DeliveryOnline   = "online"
	DeliveryOnCampus = "on-campus"
)

// Criteria is one set of course filters. Categories combine with AND; values
// inside a multi-valued category combine with OR. The zero value matches every
// available course.
//
// The original front end, API route and chatbot each grew their own variant of
// these match rules; this is the single canonical set, shared by every caller.
type Criteria struct {
	// Schools matches case-insensitive substrings of the school name.
	Schools []string
	// Search matches a substring of name, code, summary or description.
	Search string
	// Subjects matches against the subject area, keywords and course name.
	Subjects []string
	// CreditLevels matches the parsed SCQF level exactly.
	CreditLevels []int
	// MinCredits/MaxCredits bound the credit count inclusively. Courses with
	// missing or non-numeric credits are excluded whenever a bound is set.
	MinCredits *int
	MaxCredits *int
	// Years matches the inferred academic year exactly.
	Years []int
	// CourseLevel is "undergraduate" or "postgraduate".
	CourseLevel string
	// VisitingStudents keeps only courses open to visiting students.
	VisitingStudents bool
	// DeliveryMethod is "online" or "on-campus".
	DeliveryMethod string
	// ShowUnavailable opts courses not delivered this year back in.
	ShowUnavailable bool
}

// Apply filters courses, preserving input order.
func (cr Criteria) Apply(courses []model.Course) []model.Course {
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if cr.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether a single course satisfies every supplied criterion.
func (cr Criteria) Matches(c model.Course) bool {
	if !cr.ShowUnavailable && !c.IsAvailable() {
		return false
	}
	if len(cr.Schools) > 0 && !anyFold(c.School, cr.Schools) {
		return false
	}
	if cr.Search != "" && !cr.matchSearch(c) {
		return false
	}
	if len(cr.Subjects) > 0 && !cr.matchSubjects(c) {
		return false
	}
	if len(cr.CreditLevels) > 0 && !containsInt(cr.CreditLevels, c.SCQFLevel()) {
		return false
	}
	if !cr.matchCredits(c) {
		return false
	}
	if len(cr.Years) > 0 && !containsInt(cr.Years, c.Year()) {
		return false
	}
	if !cr.matchCourseLevel(c) {
		return false
	}
	if cr.VisitingStudents && !openToVisiting(c) {
		return false
	}
	if !cr.matchDelivery(c) {
		return false
	}
	return true
}

func (cr Criteria) matchSearch(c model.Course) bool {
	q := strings.ToLower(cr.Search)
	for _, field := range []string{c.Name, c.Code, c.Summary, c.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (cr Criteria) matchSubjects(c model.Course) bool {
	haystack := strings.ToLower(c.Subject + " " + c.Name + " " + strings.Join(c.Keywords, " "))
	for _, sub := range cr.Subjects {
		if strings.Contains(haystack, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func (cr Criteria) matchCredits(c model.Course) bool {
	if cr.MinCredits == nil && cr.MaxCredits == nil {
		return true
	}
	n, ok := c.CreditValue()
	if !ok {
		return false
	}
	if cr.MinCredits != nil && n < *cr.MinCredits {
		return false
	}
	if cr.MaxCredits != nil && n > *cr.MaxCredits {
		return false
	}
	return true
}

func (cr Criteria) matchCourseLevel(c model.Course) bool {
	switch cr.CourseLevel {
	case LevelPostgraduate:
		return c.Postgraduate()
	case LevelUndergraduate:
		return !c.Postgraduate()
	default:
		return true
	}
}

// matchDelivery applies the canonical delivery rule: an explicit delivery
// field keyword decides first, then a description/summary keyword check.
// Absence of keywords means on-campus; nothing is inferred from what a
// description fails to say.
func (cr Criteria) matchDelivery(c model.Course) bool {
	switch cr.DeliveryMethod {
	case DeliveryOnline:
		return isOnline(c)
	case DeliveryOnCampus:
		return !isOnline(c)
	default:
		return true
	}
}

var onlineDeliveryWords = []string{"online", "distance", "digital"}

var onlineTextPhrases = []string{
	"delivered online",
	"online learning",
	"distance learning",
	"fully online",
}

func isOnline(c model.Course) bool {
	delivery := strings.ToLower(c.Delivery)
	if delivery != "" {
		for _, w := range onlineDeliveryWords {
			if strings.Contains(delivery, w) {
				return true
			}
		}
		return false
	}
	text := strings.ToLower(c.Summary + " " + c.Description)
	for _, p := range onlineTextPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// openToVisiting checks the DRPS availability code. "Available to all
// students (SV1)" is the common positive form.
func openToVisiting(c model.Course) bool {
	a := strings.ToLower(c.Availability)
	return strings.Contains(a, "sv1") || strings.Contains(a, "visiting")
}

func anyFold(field string, wanted []string) bool {
	f := strings.ToLower(field)
	for _, w := range wanted {
		if strings.Contains(f, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func containsInt(vals []int, v int) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
