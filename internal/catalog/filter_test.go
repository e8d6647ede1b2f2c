package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

func intp(n int) *int { return &n }

func testCourses() []model.Course {
	return []model.Course{
		{
			Code:        "INFR08025",
			Name:        "Introduction to Data Science",
			School:      "School of Informatics",
			Subject:     "Informatics",
			CreditLevel: "SCQF Level 8 (Year 1 Undergraduate)",
			Credits:     "20",
			Period:      "Semester 1",
			Keywords:    []string{"data", "statistics", "python"},
		},
		{
			Code:         "MATH11176",
			Name:         "Statistical Programming",
			School:       "School of Mathematics",
			Subject:      "Mathematics",
			CreditLevel:  "SCQF Level 11 (Postgraduate)",
			Credits:      "10",
			Period:       "Semester 1",
			Availability: "Available to all students (SV1)",
		},
		{
			Code:        "EFIE08001",
			Name:        "Edinburgh Futures: Data and Society",
			School:      "Edinburgh Futures Institute",
			CreditLevel: "SCQF Level 8 (Year 1 Undergraduate)",
			Credits:     "20",
			Period:      "Flexible",
			Delivery:    "Online Distance Learning",
		},
		{
			Code:        "LASC10071",
			Name:        "Phonology",
			School:      "School of Philosophy, Psychology and Language Sciences",
			CreditLevel: "SCQF Level 10 (Year 3 Undergraduate)",
			Credits:     "",
			Period:      "Not delivered this year",
		},
	}
}

func TestApply_ZeroCriteria(t *testing.T) {
	courses := testCourses()
	got := Criteria{}.Apply(courses)
	// Zero criteria still drop courses not delivered this year.
	require.Len(t, got, 3)
	for _, c := range got {
		assert.True(t, c.IsAvailable())
	}
}

func TestApply_ShowUnavailable(t *testing.T) {
	got := Criteria{ShowUnavailable: true}.Apply(testCourses())
	assert.Len(t, got, 4)
}

func TestApply_Idempotent(t *testing.T) {
	cr := Criteria{Schools: []string{"informatics", "mathematics"}, MaxCredits: intp(20)}
	once := cr.Apply(testCourses())
	twice := cr.Apply(once)
	assert.Equal(t, once, twice)
}

func TestMatches(t *testing.T) {
	courses := testCourses()
	tests := []struct {
		name string
		cr   Criteria
		want []string
	}{
		{
			name: "school substring case-insensitive",
			cr:   Criteria{Schools: []string{"informatics"}},
			want: []string{"INFR08025"},
		},
		{
			name: "schools OR within category",
			cr:   Criteria{Schools: []string{"informatics", "mathematics"}},
			want: []string{"INFR08025", "MATH11176"},
		},
		{
			name: "search hits name",
			cr:   Criteria{Search: "data"},
			want: []string{"INFR08025", "EFIE08001"},
		},
		{
			name: "subject matches keywords",
			cr:   Criteria{Subjects: []string{"python"}},
			want: []string{"INFR08025"},
		},
		{
			name: "credit level exact",
			cr:   Criteria{CreditLevels: []int{11}},
			want: []string{"MATH11176"},
		},
		{
			name: "categories AND together",
			cr:   Criteria{Schools: []string{"informatics", "mathematics"}, CreditLevels: []int{8}},
			want: []string{"INFR08025"},
		},
		{
			name: "year from explicit tag",
			cr:   Criteria{Years: []int{1}},
			want: []string{"INFR08025", "EFIE08001"},
		},
		{
			name: "undergraduate level",
			cr:   Criteria{CourseLevel: LevelUndergraduate},
			want: []string{"INFR08025", "EFIE08001"},
		},
		{
			name: "postgraduate level",
			cr:   Criteria{CourseLevel: LevelPostgraduate},
			want: []string{"MATH11176"},
		},
		{
			name: "visiting students",
			cr:   Criteria{VisitingStudents: true},
			want: []string{"MATH11176"},
		},
		{
			name: "delivery online via delivery field",
			cr:   Criteria{DeliveryMethod: DeliveryOnline},
			want: []string{"EFIE08001"},
		},
		{
			name: "delivery on-campus",
			cr:   Criteria{DeliveryMethod: DeliveryOnCampus},
			want: []string{"INFR08025", "MATH11176"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, c := range tt.cr.Apply(courses) {
				got = append(got, c.Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchCredits(t *testing.T) {
	tests := []struct {
		name    string
		credits string
		min     *int
		max     *int
		want    bool
	}{
		{"no bounds pass everything", "", nil, nil, true},
		{"inclusive lower bound", "20", intp(20), nil, true},
		{"inclusive upper bound", "20", nil, intp(20), true},
		{"below min", "10", intp(20), nil, false},
		{"above max", "40", nil, intp(20), false},
		{"zero min keeps zero credits", "0", intp(0), intp(120), true},
		{"missing credits excluded when bounded", "", intp(0), intp(120), false},
		{"non-numeric credits excluded when bounded", "varies", nil, intp(120), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cr := Criteria{MinCredits: tt.min, MaxCredits: tt.max, ShowUnavailable: true}
			c := model.Course{Code: "X", Credits: tt.credits}
			assert.Equal(t, tt.want, cr.Matches(c))
		})
	}
}

func TestIsOnline_PhraseCheckOnlyWithoutDeliveryField(t *testing.T) {
	byPhrase := model.Course{Description: "This course is delivered online over ten weeks."}
	assert.True(t, isOnline(byPhrase))

	// An explicit on-campus delivery field wins over description text.
	explicit := model.Course{
		Delivery:    "On campus",
		Description: "Materials from our online learning archive are used in lectures.",
	}
	assert.False(t, isOnline(explicit))

	// Silence is not evidence of either mode.
	assert.False(t, isOnline(model.Course{Description: "Lectures and tutorials."}))
}
