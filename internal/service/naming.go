package service

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/noah-isme/syntheses-api/internal/models"
)

var unsafeNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// sanitizeSegment makes user text safe as a single path segment.
func sanitizeSegment(s string) string {
	s = unsafeNameChars.Replace(strings.TrimSpace(s))
	if strings.Trim(s, ".") == "" {
		return strings.Repeat("_", len(s))
	}
	return s
}

// artifactName builds "{course}_{title}_{author}_{dd-mm-yyyy}{ext}".
func artifactName(course, title, author string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s_%s%s",
		sanitizeSegment(course), sanitizeSegment(title), sanitizeSegment(author),
		at.Format(models.FileDateLayout), ext)
}

// relocationDir is where an edited artifact lands: "Annee_{n}/{course}" when a
// year is set, "{course}" otherwise.
func relocationDir(course string, year *int) string {
	if year != nil {
		return filepath.Join(fmt.Sprintf("Annee_%d", *year), sanitizeSegment(course))
	}
	return sanitizeSegment(course)
}

// withSuffix inserts "_n" before the extension of name.
func withSuffix(name string, n int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

// maxNameAttempts bounds the "_n" suffixes tried for one artifact name.
const maxNameAttempts = 1000

var errNoFreeName = errors.New("no free file name")

// claimName calls place with dir/name, then dir/name_2, dir/name_3, ... for as
// long as place reports the name as taken (fs.ErrExist). place must create
// the file atomically so two callers never end up on the same name.
func claimName(dir, name string, place func(rel string) error) (string, error) {
	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = withSuffix(name, n)
		}
		rel := filepath.Join(dir, candidate)
		err := place(rel)
		if err == nil {
			return rel, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", errNoFreeName
}
