// Package export names and writes the artifacts of an export run.
package export

import (
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the per-run suffix layout, e.g. 20240131-235959.
const TimestampLayout = "20060102-150405"

// Namer builds timestamped artifact paths under Dir. One Namer is shared
// by every artifact of a run so they carry the same suffix.
type Namer struct {
	Dir       string
	Timestamp time.Time
}

// NewNamer returns a Namer stamped with now.
func NewNamer(dir string, now time.Time) Namer {
	return Namer{Dir: dir, Timestamp: now}
}

// Name returns <Dir>/<base>-<timestamp>[.<ext>]. Dots around base and ext
// and leading slashes of base are stripped.
func (n Namer) Name(base, ext string) string {
	if ext = strings.Trim(ext, "."); ext != "" {
		ext = "." + ext
	}
	base = strings.TrimLeft(strings.Trim(base, "."), "/")
	return filepath.Join(n.Dir, base+"-"+n.Timestamp.Format(TimestampLayout)+ext)
}
