package nvd

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMirror = "https://nvd.nist.gov/feeds/json/cve/1.1/"

	// ModifiedArchive is the rolling segment of advisories changed during the last eight days.
	ModifiedArchive = "modified"
)

// Archive names one segment of the NVD JSON 1.1 feed: a calendar year or "modified".
type Archive struct {
	Name string
}

func YearArchive(year int) Archive {
	return Archive{Name: strconv.Itoa(year)}
}

// FileName is the feed file of this segment on any mirror.
func (a Archive) FileName() string {
	return fmt.Sprintf("nvdcve-1.1-%s.json.gz", a.Name)
}

// URL resolves the segment below the given mirror root.
func (a Archive) URL(mirror string) string {
	return NormalizeMirror(mirror) + a.FileName()
}

func (a Archive) String() string {
	return a.Name
}

// NormalizeMirror makes sure the mirror root ends with exactly one slash.
func NormalizeMirror(mirror string) string {
	return strings.TrimRight(mirror, "/") + "/"
}

// YearArchives lists the year segments worth checking: the current year and the five before it.
func YearArchives(now time.Time) []Archive {
	current := now.Year()
	archives := make([]Archive, 0, 6)
	for year := current - 5; year <= current; year++ {
		archives = append(archives, YearArchive(year))
	}
	return archives
}
