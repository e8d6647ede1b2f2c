package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/hacktheburgh/coursefinder/internal/model"
)

// ReadCourseFile parses one courses/*.json file into normalised records.
func ReadCourseFile(path string) ([]model.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	var courses []model.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}
	return courses, nil
}

// WriteCourseFile writes courses back to path in canonical form. The previous
// contents are preserved as path.bak, and the write itself goes through a
// temp file and rename so a crash can't leave a half-written catalogue file.
func WriteCourseFile(path string, courses []model.Course) error {
	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
			return eris.Wrapf(err, "catalog: write backup for %s", path)
		}
	}

	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "catalog: marshal %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".courses-*.json")
	if err != nil {
		return eris.Wrapf(err, "catalog: temp file for %s", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrapf(err, "catalog: write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrapf(err, "catalog: sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "catalog: close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "catalog: replace %s", path)
	}
	return nil
}

// CourseFiles lists the course JSON files under the data directory in a
// stable order.
func CourseFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "courses", "*.json"))
	if err != nil {
		return nil, eris.Wrap(err, "catalog: list course files")
	}
	return files, nil
}
