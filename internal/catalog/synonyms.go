package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultSynonyms returns the built-in synonym clusters used for interest
// expansion. Keys are lowercase interest terms; values are catalogue terms
// that should also count as a match.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"data":      {"statistics", "analytics", "databases", "machine learning"},
		"ai":        {"artificial intelligence", "machine learning", "deep learning"},
		"computing": {"computer science", "informatics", "programming", "software"},
		"coding":    {"programming", "software", "informatics"},
		"maths":     {"mathematics", "statistics", "algebra", "calculus"},
		"math":      {"mathematics", "statistics", "algebra", "calculus"},
		"biology":   {"life sciences", "biomedical", "genetics", "ecology"},
		"business":  {"management", "economics", "finance", "marketing"},
		"language":  {"linguistics", "literature", "translation"},
		"physics":   {"astrophysics", "quantum", "mechanics"},
		"medicine":  {"medical", "clinical", "health", "anatomy"},
		"law":       {"legal", "jurisprudence"},
		"art":       {"design", "visual culture", "history of art"},
		"history":   {"historical", "archaeology", "classics"},
		"psychology": {
			"cognitive", "behavioural", "neuroscience",
		},
		"environment": {"climate", "sustainability", "ecology", "geoscience"},
	}
}

// LoadSynonyms reads synonym clusters from a YAML file of the form
//
//	data:
//	  - statistics
//	  - analytics
//
// so the expansion table can be tuned without a rebuild.
func LoadSynonyms(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read synonyms %s", path)
	}
	var clusters map[string][]string
	if err := yaml.Unmarshal(data, &clusters); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse synonyms %s", path)
	}
	return clusters, nil
}
