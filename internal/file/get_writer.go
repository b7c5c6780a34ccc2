package file

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// GetWriter returns defaultWriter when no output file is named, otherwise the (truncated) output file. The
// returned function must be called once the report has been written.
func GetWriter(fs afero.Fs, defaultWriter io.Writer, outputFile string) (io.Writer, func() error, error) {
	nop := func() error { return nil }
	path := strings.TrimSpace(outputFile)

	if path == "" {
		return defaultWriter, nop, nil
	}

	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nop, fmt.Errorf("unable to create report file: %w", err)
	}
	return f, f.Close, nil
}
