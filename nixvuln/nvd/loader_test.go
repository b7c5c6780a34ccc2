package nvd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testETag = `"5f3c-abc"`

func gzipped(t *testing.T, contents string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newFeedServer(t *testing.T, body []byte, requests *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feeds/nvdcve-1.1-modified.json.gz", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		if r.Header.Get("If-None-Match") == testETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", testETag)
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/feeds/nvdcve-1.1-2021.json.gz", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/feeds/nvdcve-1.1-2022.json.gz", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		_, _ = w.Write([]byte("this is not gzip"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	var requests int32
	srv := newFeedServer(t, gzipped(t, `{"CVE_Items": [
		{"cve": {"CVE_data_meta": {"ID": "CVE-2023-0001"}}, "configurations": {"nodes": [
			{"operator": "OR", "cpe_match": [{"vulnerable": true, "cpe23Uri": "cpe:2.3:a:gnu:bash:5.0:*:*:*:*:*:*:*"}]}
		]}}
	]}`), &requests)

	loader := NewLoader(srv.URL+"/feeds", time.Second)

	res, err := loader.Load(context.Background(), Archive{Name: ModifiedArchive}, "")
	require.NoError(t, err)
	assert.False(t, res.NotModified)
	assert.Equal(t, testETag, res.ETag)
	require.Len(t, res.Vulnerabilities, 1)
	assert.Equal(t, "CVE-2023-0001", res.Vulnerabilities[0].ID)
	assert.True(t, res.Vulnerabilities[0].Matches("bash", "5.0"))

	res, err = loader.Load(context.Background(), Archive{Name: ModifiedArchive}, testETag)
	require.NoError(t, err)
	assert.True(t, res.NotModified)
	assert.Empty(t, res.Vulnerabilities)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestLoader_LoadFailures(t *testing.T) {
	var requests int32
	srv := newFeedServer(t, nil, &requests)
	loader := NewLoader(srv.URL+"/feeds/", time.Second)

	tests := []struct {
		name    string
		archive Archive
	}{
		{name: "server error", archive: YearArchive(2021)},
		{name: "not compressed", archive: YearArchive(2022)},
		{name: "not found", archive: YearArchive(1999)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), test.archive, "")
			assert.Error(t, err)
		})
	}
}

func TestLoader_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	loader := NewLoader(srv.URL, 50*time.Millisecond)
	_, err := loader.Load(context.Background(), Archive{Name: ModifiedArchive}, "")
	assert.Error(t, err)
}
