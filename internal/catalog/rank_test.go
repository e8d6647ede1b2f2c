package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

func TestRank_ScoresNonIncreasing(t *testing.T) {
	ranker := NewRanker(DefaultWeights, nil)
	scored := ranker.Rank(testCourses(), "data science and statistics", 0)
	require.NotEmpty(t, scored)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	for _, s := range scored {
		assert.Positive(t, s.Score)
	}
}

func TestRank_NoMatchesIsEmpty(t *testing.T) {
	ranker := NewRanker(DefaultWeights, nil)
	assert.Empty(t, ranker.Rank(testCourses(), "zzzzqqq", 0))
	assert.Empty(t, ranker.Rank(testCourses(), "", 2))
	// Pure stopwords carry no signal either.
	assert.Empty(t, ranker.Rank(testCourses(), "in", 2))
}

func TestRank_NameBeatsDescription(t *testing.T) {
	courses := []model.Course{
		{Code: "A", Name: "Quantum Mechanics"},
		{Code: "B", Name: "Modern Physics", Description: "Includes an introduction to quantum mechanics."},
	}
	ranker := NewRanker(DefaultWeights, map[string][]string{})
	scored := ranker.Rank(courses, "quantum mechanics", 0)
	require.Len(t, scored, 2)
	assert.Equal(t, "A", scored[0].Code)
}

func TestRank_YearBonus(t *testing.T) {
	courses := []model.Course{
		{
			Code:        "INFR08025",
			Name:        "Introduction to Data Science",
			CreditLevel: "SCQF Level 8 (Year 1 Undergraduate)",
		},
		{
			Code:        "INFR09031",
			Name:        "Data Science Methods",
			CreditLevel: "SCQF Level 9 (Year 2 Undergraduate)",
		},
	}
	ranker := NewRanker(DefaultWeights, map[string][]string{})

	// With a second-year student the Year 2 course wins despite the
	// near-identical text match.
	scored := ranker.Rank(courses, "data science", 2)
	require.Len(t, scored, 2)
	assert.Equal(t, "INFR09031", scored[0].Code)
	assert.Greater(t, scored[0].Score, scored[1].Score)

	// Without a year, catalogue order breaks the tie.
	scored = ranker.Rank(courses, "data science", 0)
	require.Len(t, scored, 2)
	assert.Equal(t, "INFR08025", scored[0].Code)
}

func TestRank_YearBonusRequiresTextMatch(t *testing.T) {
	courses := []model.Course{
		{Code: "HIST09001", Name: "Medieval Scotland", CreditLevel: "SCQF Level 9 (Year 2 Undergraduate)"},
	}
	ranker := NewRanker(DefaultWeights, map[string][]string{})
	// Year alone never makes an unrelated course relevant.
	assert.Empty(t, ranker.Rank(courses, "astrophysics", 2))
}

func TestRank_SynonymExpansion(t *testing.T) {
	courses := []model.Course{
		{Code: "INFR10069", Name: "Machine Learning Practical"},
	}
	ranker := NewRanker(DefaultWeights, nil)
	scored := ranker.Rank(courses, "I'm interested in AI", 0)
	require.Len(t, scored, 1)
	assert.Equal(t, "INFR10069", scored[0].Code)
}

func TestRank_StableTies(t *testing.T) {
	courses := []model.Course{
		{Code: "A", Name: "Databases 1"},
		{Code: "B", Name: "Databases 2"},
		{Code: "C", Name: "Databases 3"},
	}
	ranker := NewRanker(DefaultWeights, map[string][]string{})
	scored := ranker.Rank(courses, "databases", 0)
	require.Len(t, scored, 3)
	assert.Equal(t, []string{"A", "B", "C"},
		[]string{scored[0].Code, scored[1].Code, scored[2].Code})
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stopwords dropped from unigrams",
			text: "I want to learn about ancient history",
			want: []string{
				"learn about ancient", "about ancient", "about ancient history",
				"ancient", "ancient history", "history",
			},
		},
		{
			name: "short subject terms survive",
			text: "courses about AI",
			want: []string{"courses about ai", "about ai", "ai"},
		},
		{
			name: "punctuation split",
			text: "maths, physics!",
			want: []string{"maths", "maths physics", "physics"},
		},
		{
			name: "empty",
			text: "   ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.text))
		})
	}
}

func TestPluralVariants(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"statistics", []string{"statistic"}},
		{"history", []string{"historys", "histories"}},
		{"studies", []string{"study"}},
		{"languages", []string{"languag", "language"}},
		{"data", []string{"datas"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pluralVariants(tt.term), tt.term)
	}
}

func TestExpand_Dedupes(t *testing.T) {
	ranker := NewRanker(DefaultWeights, map[string][]string{
		"maths": {"mathematics", "statistics"},
		"stats": {"statistics"},
	})
	out := ranker.expand([]string{"maths", "stats"})
	seen := make(map[string]int)
	for _, term := range out {
		seen[term]++
		assert.Equal(t, 1, seen[term], term)
	}
	assert.Contains(t, out, "mathematics")
	assert.Contains(t, out, "statistics")
}
