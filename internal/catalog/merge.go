package catalog

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

// quotaPattern pulls the enrolment quota out of the scraped academic year
// text, e.g. "2024/25, Quota:  120".
var quotaPattern = regexp.MustCompile(`Quota:\s*(\d+)`)

// ExtractQuota parses the quota from an academic year string. Returns nil
// when no quota is recorded.
func ExtractQuota(academicYear string) *int {
	m := quotaPattern.FindStringSubmatch(academicYear)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// percentFull is cohort/quota as a percentage, rounded to 2 decimal places.
func percentFull(cohort, quota *int) *float64 {
	if cohort == nil || quota == nil || *quota == 0 {
		return nil
	}
	v := round2(float64(*cohort) / float64(*quota) * 100)
	return &v
}

// popularityScore is cohortSize × (cohortSize/quota): absolute demand
// weighted by how full the course is.
func popularityScore(cohort, quota *int) *float64 {
	if cohort == nil || quota == nil || *quota == 0 {
		return nil
	}
	v := round2(float64(*cohort) * float64(*cohort) / float64(*quota))
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MergePopularity joins cohort sizes and campuses from the registry CSV
// exports onto scraped course codes and writes merged_course_data.json into
// the data directory, keyed by course code. Returns the number of courses
// merged. The location CSV is optional.
func MergePopularity(dir, cohortCSV, locationCSV string) (int, error) {
	cohorts, err := readCohortCSV(cohortCSV)
	if err != nil {
		return 0, err
	}

	campuses := map[string][]string{}
	if locationCSV != "" {
		campuses, err = readLocationCSV(locationCSV)
		if err != nil {
			zap.L().Warn("skipping campus data", zap.String("file", locationCSV), zap.Error(err))
			campuses = map[string][]string{}
		}
	}

	files, err := CourseFiles(dir)
	if err != nil {
		return 0, err
	}

	merged := make(map[string]model.Popularity)
	for _, f := range files {
		courses, err := ReadCourseFile(f)
		if err != nil {
			zap.L().Warn("skipping unreadable course file", zap.String("file", f), zap.Error(err))
			continue
		}
		for _, c := range courses {
			if c.Code == "" {
				continue
			}
			cohort, ok := cohorts[c.Code]
			if !ok {
				continue
			}
			quota := ExtractQuota(c.AcademicYear)
			merged[c.Code] = model.Popularity{
				Code:            c.Code,
				Quota:           quota,
				CohortSize:      cohort,
				PercentFull:     percentFull(cohort, quota),
				PopularityScore: popularityScore(cohort, quota),
				Campuses:        campuses[c.Code],
			}
		}
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return 0, eris.Wrap(err, "catalog: marshal merged data")
	}
	out := filepath.Join(dir, "merged_course_data.json")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return 0, eris.Wrapf(err, "catalog: write %s", out)
	}
	return len(merged), nil
}

// readCohortCSV maps courseCode → cohortSize. A blank or non-numeric cohort
// cell is kept as nil so the quota can still be merged.
func readCohortCSV(path string) (map[string]*int, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	codeCol, sizeCol, err := findColumns(records, "courseCode", "cohortSize")
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: cohort csv %s", path)
	}

	out := make(map[string]*int)
	for _, row := range records[1:] {
		if codeCol >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		if code == "" {
			continue
		}
		var size *int
		if sizeCol < len(row) {
			if n, err := strconv.Atoi(strings.TrimSpace(row[sizeCol])); err == nil {
				size = &n
			}
		}
		if _, seen := out[code]; !seen {
			out[code] = size
		}
	}
	return out, nil
}

// readLocationCSV maps courseCode → unique campus names. Leading asterisks
// (the export's "primary campus" marker) are stripped.
func readLocationCSV(path string) (map[string][]string, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	codeCol, campusCol, err := findColumns(records, "courseCode", "Campus")
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: location csv %s", path)
	}

	sets := make(map[string]map[string]bool)
	for _, row := range records[1:] {
		if codeCol >= len(row) || campusCol >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		campus := strings.TrimPrefix(strings.TrimSpace(row[campusCol]), "*")
		if code == "" || campus == "" {
			continue
		}
		if sets[code] == nil {
			sets[code] = make(map[string]bool)
		}
		sets[code][campus] = true
	}

	out := make(map[string][]string, len(sets))
	for code, set := range sets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		out[code] = names
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}
	if len(records) < 1 {
		return nil, eris.Errorf("catalog: %s is empty", path)
	}
	return records, nil
}

func findColumns(records [][]string, a, b string) (int, int, error) {
	header := records[0]
	ai, bi := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case a:
			ai = i
		case b:
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, 0, eris.Errorf("missing %q or %q column", a, b)
	}
	return ai, bi, nil
}
