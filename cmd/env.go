package main

import (
	"context"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/runlog"
)

// newRanker builds the interest ranker, loading synonym clusters from the
// configured YAML file when one is set.
func newRanker() (*catalog.Ranker, error) {
	var synonyms map[string][]string
	if cfg.Catalog.SynonymsFile != "" {
		loaded, err := catalog.LoadSynonyms(cfg.Catalog.SynonymsFile)
		if err != nil {
			return nil, err
		}
		synonyms = loaded
	}
	return catalog.NewRanker(catalog.DefaultWeights, synonyms), nil
}

// openRunLog opens and migrates the run history database.
func openRunLog(ctx context.Context) (*runlog.Store, error) {
	runs, err := runlog.Open(cfg.RunLog.Path)
	if err != nil {
		return nil, err
	}
	if err := runs.Migrate(ctx); err != nil {
		runs.Close()
		return nil, err
	}
	return runs, nil
}
