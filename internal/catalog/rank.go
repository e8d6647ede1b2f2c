package catalog

import (
	"sort"
	"strings"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

// Weights is the fixed scoring table for relevance ranking. A match in a
// course name counts for more than one buried in the description; the bonus
// terms reward hitting the student's literal words and their year of study.
// This is a hand-tuned heuristic, not a retrieval model, and it is kept in one
// place so the weights stay independently testable.
type Weights struct {
	Name        int
	Keywords    int
	Description int
	Bullets     int
	Code        int
	School      int
	ExactBonus  int
	YearBonus   int
}

// DefaultWeights is the tuning used by the chatbot and the search command.
var DefaultWeights = Weights{
	Name:        4,
	Keywords:    3,
	Description: 2,
	Bullets:     2,
	Code:        1,
	School:      1,
	ExactBonus:  3,
	YearBonus:   5,
}

// ScoredCourse pairs a course with its relevance score.
type ScoredCourse struct {
	model.Course
	Score int `json:"relevance_score"`
}

// Ranker scores courses against free-text interests.
type Ranker struct {
	weights  Weights
	synonyms map[string][]string
}

// NewRanker builds a ranker with the given synonym clusters. A nil map uses
// the built-in defaults.
func NewRanker(weights Weights, synonyms map[string][]string) *Ranker {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Ranker{weights: weights, synonyms: synonyms}
}

// Rank scores every course against the interests text and an optional year
// (0 means no year preference), drops zero scores and sorts descending.
// The sort is stable, so ties keep catalogue order.
func (r *Ranker) Rank(courses []model.Course, interests string, year int) []ScoredCourse {
	original := tokenize(interests)
	if len(original) == 0 {
		return nil
	}
	expanded := r.expand(original)

	var out []ScoredCourse
	for _, c := range courses {
		score := r.score(c, original, expanded, year)
		if score > 0 {
			out = append(out, ScoredCourse{Course: c, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (r *Ranker) score(c model.Course, original, expanded []string, year int) int {
	name := strings.ToLower(c.Name)
	keywords := strings.ToLower(strings.Join(c.Keywords, " "))
	description := strings.ToLower(c.Summary + " " + c.Description)
	bulletText := strings.ToLower(strings.Join(c.BulletPoints, " "))
	code := strings.ToLower(c.Code)
	school := strings.ToLower(c.School)

	score := 0
	for _, term := range expanded {
		if strings.Contains(name, term) {
			score += r.weights.Name
		}
		if keywords != "" && strings.Contains(keywords, term) {
			score += r.weights.Keywords
		}
		if strings.Contains(description, term) {
			score += r.weights.Description
		}
		if bulletText != "" && strings.Contains(bulletText, term) {
			score += r.weights.Bullets
		}
		if strings.Contains(code, term) {
			score += r.weights.Code
		}
		if strings.Contains(school, term) {
			score += r.weights.School
		}
	}

	// Bonus for the student's literal words, before any expansion.
	for _, term := range original {
		if strings.Contains(name, term) || strings.Contains(description, term) {
			score += r.weights.ExactBonus
		}
	}

	if score > 0 && year > 0 && c.Year() == year {
		score += r.weights.YearBonus
	}
	return score
}

// expand widens the term set with singular/plural variants and the synonym
// clusters. Original terms stay in the output.
func (r *Ranker) expand(terms []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if len(t) < 2 || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for _, t := range terms {
		add(t)
		for _, v := range pluralVariants(t) {
			add(v)
		}
		for _, syn := range r.synonyms[t] {
			add(strings.ToLower(syn))
		}
	}
	return out
}

// pluralVariants produces naive singular/plural forms of an English term.
func pluralVariants(t string) []string {
	var vars []string
	switch {
	case strings.HasSuffix(t, "ies"):
		vars = append(vars, t[:len(t)-3]+"y")
	case strings.HasSuffix(t, "es"):
		vars = append(vars, t[:len(t)-2], t[:len(t)-1])
	case strings.HasSuffix(t, "s"):
		vars = append(vars, t[:len(t)-1])
	default:
		vars = append(vars, t+"s")
		if strings.HasSuffix(t, "y") {
			vars = append(vars, t[:len(t)-1]+"ies")
		}
	}
	return vars
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "in": true, "of": true,
	"on": true, "to": true, "for": true, "with": true, "about": true,
	"i": true, "im": true, "me": true, "my": true, "am": true, "is": true,
	"want": true, "like": true, "learn": true, "learning": true,
	"interested": true, "course": true, "courses": true, "study": true,
	"studying": true, "year": true, "what": true, "which": true, "are": true,
	"do": true, "can": true, "some": true, "any": true, "that": true,
}

// tokenize lowercases the text and emits non-stopword unigrams plus adjacent
// bigrams and trigrams. N-grams are built from the raw token stream so multi
// word subjects ("data science", "ancient history") survive, but an n-gram
// made purely of stopwords is dropped.
func tokenize(text string) []string {
	raw := splitWords(strings.ToLower(text))
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var terms []string
	add := func(t string, allStop bool) {
		if allStop || seen[t] {
			return
		}
		seen[t] = true
		terms = append(terms, t)
	}

	for i, w := range raw {
		if len(w) > 1 {
			add(w, stopwords[w])
		}
		if i+1 < len(raw) {
			add(raw[i]+" "+raw[i+1], stopwords[raw[i]] && stopwords[raw[i+1]])
		}
		if i+2 < len(raw) {
			add(raw[i]+" "+raw[i+1]+" "+raw[i+2],
				stopwords[raw[i]] && stopwords[raw[i+1]] && stopwords[raw[i+2]])
		}
	}
	return terms
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
