package common

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout renders as e.g. 2024-05-01-13-45-07+0200.
const TimestampLayout = "2006-01-02-15-04-05-0700"

// Timestamp formats t for use in generated file names.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// BuildDestinationPath returns <folder>/<timestamp>-<name><ext>. ext gets a leading
// dot when missing; an empty folder yields a bare file name.
func BuildDestinationPath(folder string, t time.Time, name, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	file := Timestamp(t) + "-" + name + ext
	if folder == "" {
		return file
	}
	return filepath.Join(folder, file)
}
