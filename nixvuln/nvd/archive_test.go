package nvd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestArchive_URL(t *testing.T) {
	tests := []struct {
		mirror   string
		archive  Archive
		expected string
	}{
		{mirror: DefaultMirror, archive: Archive{Name: ModifiedArchive}, expected: "https://nvd.nist.gov/feeds/json/cve/1.1/nvdcve-1.1-modified.json.gz"},
		{mirror: "http://localhost:8080/nvd", archive: YearArchive(2021), expected: "http://localhost:8080/nvd/nvdcve-1.1-2021.json.gz"},
		{mirror: "http://localhost:8080/nvd//", archive: YearArchive(2002), expected: "http://localhost:8080/nvd/nvdcve-1.1-2002.json.gz"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.archive.URL(test.mirror))
		})
	}
}

func TestYearArchives(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []Archive{
		{Name: "2019"}, {Name: "2020"}, {Name: "2021"}, {Name: "2022"}, {Name: "2023"}, {Name: "2024"},
	}, YearArchives(now))
}
