package catalog

import (
	"go.uber.org/zap"
)

// PruneResult summarises a prune pass over the catalogue.
type PruneResult struct {
	FilesChanged   int
	CoursesRemoved int
	CoursesKept    int
}

// PruneUnavailable removes records not delivered this year from every course
// file, writing changed files back with a .bak backup. Files with nothing to
// remove are left untouched.
func PruneUnavailable(dir string) (*PruneResult, error) {
	files, err := CourseFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &PruneResult{}
	for _, f := range files {
		courses, err := ReadCourseFile(f)
		if err != nil {
			zap.L().Warn("skipping unreadable course file", zap.String("file", f), zap.Error(err))
			continue
		}

		kept := courses[:0]
		for _, c := range courses {
			if c.IsAvailable() {
				kept = append(kept, c)
			}
		}
		result.CoursesKept += len(kept)

		removed := len(courses) - len(kept)
		if removed == 0 {
			continue
		}
		if err := WriteCourseFile(f, kept); err != nil {
			return result, err
		}
		result.FilesChanged++
		result.CoursesRemoved += removed
		zap.L().Info("pruned unavailable courses",
			zap.String("file", f),
			zap.Int("removed", removed),
		)
	}
	return result, nil
}
