package nvd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/klauspost/compress/gzip"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

const DefaultTimeout = 120 * time.Second

// Result is the outcome of loading one feed segment.
type Result struct {
	// NotModified is set when the mirror confirmed that the cached copy is current; nothing else is set then.
	NotModified     bool
	Vulnerabilities []vulnerability.Vulnerability
	// ETag is the validator sent along with fresh content, if any.
	ETag string
}

// Loader fetches feed segments from a mirror.
type Loader struct {
	client *http.Client
	mirror string
}

func NewLoader(mirror string, timeout time.Duration) *Loader {
	if mirror == "" {
		mirror = DefaultMirror
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout

	return &Loader{
		client: client,
		mirror: NormalizeMirror(mirror),
	}
}

// Mirror is the normalized base URL segments are fetched from.
func (l *Loader) Mirror() string {
	return l.mirror
}

// URL is the location the given segment is fetched from.
func (l *Loader) URL(a Archive) string {
	return a.URL(l.mirror)
}

// Load fetches and parses one segment. When etag is known it is sent as a precondition and an unchanged segment
// is reported as NotModified without a body. Any status besides 200 and 304 is an error.
func (l *Loader) Load(ctx context.Context, a Archive, etag string) (*Result, error) {
	url := l.URL(a)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to construct request to %q: %w", url, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	log.Infof("loading %s", url)
	res, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting %q: %w", url, err)
	}
	defer log.CloseAndLogError(res.Body, url)

	switch res.StatusCode {
	case http.StatusNotModified:
		log.Debugf("feed segment %q not modified", a)
		return &Result{NotModified: true}, nil
	case http.StatusOK:
	default:
		return nil, fmt.Errorf("unexpected status requesting %q: %s", url, res.Status)
	}

	gz, err := gzip.NewReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress %q: %w", url, err)
	}
	defer log.CloseAndLogError(gz, url)

	log.Debugf("parsing feed segment %q", a)
	vulns, err := Parse(gz)
	if err != nil {
		return nil, fmt.Errorf("feed segment %q: %w", a, err)
	}

	return &Result{
		Vulnerabilities: vulns,
		ETag:            res.Header.Get("ETag"),
	}, nil
}
