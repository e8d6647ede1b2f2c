package api

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
)

// criteriaFromQuery maps course list query parameters onto filter criteria.
// Filtering is deliberately lenient: an unparseable numeric value drops that
// one criterion with a warning rather than failing the request.
func criteriaFromQuery(q url.Values) catalog.Criteria {
	return catalog.Criteria{
		Schools:          listParam(q, "school", "schools"),
		Search:           strings.TrimSpace(q.Get("search")),
		Subjects:         listParam(q, "subjects"),
		CreditLevels:     intListParam(q, "creditLevels"),
		MinCredits:       intParam(q, "minCredits"),
		MaxCredits:       intParam(q, "maxCredits"),
		Years:            intListParam(q, "years"),
		CourseLevel:      strings.ToLower(strings.TrimSpace(q.Get("courseLevel"))),
		VisitingStudents: boolParam(q, "visitingStudents"),
		DeliveryMethod:   strings.ToLower(strings.TrimSpace(q.Get("deliveryMethod"))),
		ShowUnavailable:  boolParam(q, "showUnavailableCourses"),
	}
}

// listParam collects values for any of the given keys, splitting each on
// commas. Front-end versions have sent both ?schools=a,b and repeated keys.
func listParam(q url.Values, keys ...string) []string {
	var out []string
	for _, key := range keys {
		for _, raw := range q[key] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

func intListParam(q url.Values, key string) []int {
	var out []int
	for _, s := range listParam(q, key) {
		n, err := strconv.Atoi(s)
		if err != nil {
			zap.L().Warn("skipping invalid numeric filter value",
				zap.String("param", key), zap.String("value", s))
			continue
		}
		out = append(out, n)
	}
	return out
}

func intParam(q url.Values, key string) *int {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		zap.L().Warn("skipping invalid numeric filter value",
			zap.String("param", key), zap.String("value", s))
		return nil
	}
	return &n
}

func boolParam(q url.Values, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return false
	}
	return v
}
