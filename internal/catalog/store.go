package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

// Store reads the scraped JSON tree under a data directory:
//
//	courses/*.json            arrays of course records, one file per school
//	colleges/*.json           one college with its schools
//	schools/*.json            one school with its subjects
//	all_colleges.json         college name summary
//	all_schools.json          flat school list
//	merged_course_data.json   optional popularity overlay keyed by course code
//
// Every load re-reads the directory; there is no cross-request cache. The
// scraper and the enrich/prune commands are the only writers, so a request
// always sees a consistent-enough snapshot for a best-effort discovery tool.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory root.
func (s *Store) Dir() string { return s.dir }

// LoadStats reports what a course load actually found. An empty catalogue is
// surfaced as-is with the stats explaining why, never papered over with
// fabricated sample records.
type LoadStats struct {
	FilesRead    int `json:"files_read"`
	FilesSkipped int `json:"files_skipped"`
	Courses      int `json:"courses"`
	Duplicates   int `json:"duplicates"`
}

// LoadCourses reads every courses/*.json file, concatenates the records and
// collapses duplicates. Malformed files are skipped with a warning; a missing
// directory yields an empty catalogue. The only error returned is context
// cancellation.
func (s *Store) LoadCourses(ctx context.Context) ([]model.Course, LoadStats, error) {
	var stats LoadStats

	pattern := filepath.Join(s.dir, "courses", "*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		zap.L().Warn("course glob failed", zap.String("pattern", pattern), zap.Error(err))
		return nil, stats, nil
	}
	sort.Strings(files)

	var all []model.Course
	for _, f := range files {
		if ctx.Err() != nil {
			return nil, stats, eris.Wrap(ctx.Err(), "catalog: load courses")
		}
		courses, err := ReadCourseFile(f)
		if err != nil {
			stats.FilesSkipped++
			zap.L().Warn("skipping unreadable course file", zap.String("file", f), zap.Error(err))
			continue
		}
		stats.FilesRead++
		all = append(all, courses...)
	}

	deduped := Dedupe(all)
	stats.Duplicates = len(all) - len(deduped)
	stats.Courses = len(deduped)

	if stats.Courses == 0 {
		zap.L().Warn("course catalogue is empty",
			zap.String("dir", s.dir),
			zap.Int("files_read", stats.FilesRead),
			zap.Int("files_skipped", stats.FilesSkipped),
		)
	}

	s.applyPopularity(deduped)
	return deduped, stats, nil
}

// Dedupe collapses records sharing a dedup key (code, falling back to name).
// Real data beats sample data; a record with a usable description beats one
// without; otherwise the first occurrence wins. Output order follows first
// occurrence, so deduplication is idempotent.
func Dedupe(courses []model.Course) []model.Course {
	index := make(map[string]int, len(courses))
	var out []model.Course

	for _, c := range courses {
		key := c.DedupKey()
		if key == "" {
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, c)
			continue
		}
		if supersedes(c, out[at]) {
			out[at] = c
		}
	}
	return out
}

// supersedes reports whether candidate should replace current under the
// duplicate-resolution heuristic.
func supersedes(candidate, current model.Course) bool {
	if current.IsSample() && !candidate.IsSample() {
		return true
	}
	if candidate.IsSample() && !current.IsSample() {
		return false
	}
	return candidate.HasDescription() && !current.HasDescription()
}

// GetCourse loads the catalogue and returns the record for code, if any.
func (s *Store) GetCourse(ctx context.Context, code string) (*model.Course, error) {
	courses, _, err := s.LoadCourses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if strings.EqualFold(courses[i].Code, code) {
			return &courses[i], nil
		}
	}
	return nil, nil
}

// LoadColleges reads colleges/*.json, falling back to all_colleges.json name
// summaries when the per-college files are absent.
func (s *Store) LoadColleges(ctx context.Context) ([]model.College, error) {
	files, _ := filepath.Glob(filepath.Join(s.dir, "colleges", "*.json"))
	sort.Strings(files)

	var colleges []model.College
	for _, f := range files {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "catalog: load colleges")
		}
		var c model.College
		if err := readJSON(f, &c); err != nil {
			zap.L().Warn("skipping unreadable college file", zap.String("file", f), zap.Error(err))
			continue
		}
		colleges = append(colleges, c)
	}
	if len(colleges) > 0 {
		return colleges, nil
	}

	summary := filepath.Join(s.dir, "all_colleges.json")
	if err := readJSON(summary, &colleges); err != nil {
		zap.L().Warn("no college data found", zap.String("dir", s.dir), zap.Error(err))
		return nil, nil
	}
	return colleges, nil
}

// LoadSubjects collects the distinct subject areas from schools/*.json.
func (s *Store) LoadSubjects(ctx context.Context) ([]model.Subject, error) {
	files, _ := filepath.Glob(filepath.Join(s.dir, "schools", "*.json"))
	sort.Strings(files)

	seen := make(map[string]bool)
	var subjects []model.Subject
	for _, f := range files {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "catalog: load subjects")
		}
		var sch model.School
		if err := readJSON(f, &sch); err != nil {
			zap.L().Warn("skipping unreadable school file", zap.String("file", f), zap.Error(err))
			continue
		}
		for _, sub := range sch.Subjects {
			if sub.Name == "" || seen[sub.Name] {
				continue
			}
			seen[sub.Name] = true
			subjects = append(subjects, sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// applyPopularity overlays merged_course_data.json onto loaded courses.
// The overlay is optional; absence is not an error.
func (s *Store) applyPopularity(courses []model.Course) {
	path := filepath.Join(s.dir, "merged_course_data.json")
	var merged map[string]model.Popularity
	if err := readJSON(path, &merged); err != nil {
		if !os.IsNotExist(eris.Cause(err)) {
			zap.L().Warn("skipping popularity overlay", zap.String("file", path), zap.Error(err))
		}
		return
	}
	for i := range courses {
		p, ok := merged[courses[i].Code]
		if !ok {
			continue
		}
		courses[i].Quota = p.Quota
		courses[i].CohortSize = p.CohortSize
		courses[i].PercentFull = p.PercentFull
		courses[i].PopularityScore = p.PopularityScore
		courses[i].Campuses = p.Campuses
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "catalog: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "catalog: parse %s", path)
	}
	return nil
}
