package net

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContent = "60 64 67\t0.8\n60 61 62\t-0.9\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ratings.tsv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testContent))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetHTTPClient(t *testing.T) {
	client, err := GetHTTPClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Jar)
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "ratings.tsv")

	err := Download(srv.URL+"/ratings.tsv", path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testContent, string(b))
}

func TestDownloadNotFound(t *testing.T) {
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "missing.tsv")

	err := Download(srv.URL+"/nope.tsv", path)
	assert.ErrorIs(t, err, ErrorURLNotFound)
}

func TestDownloadServerError(t *testing.T) {
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "broken.tsv")

	err := Download(srv.URL+"/broken", path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrorURLNotFound)
}

func TestGetText(t *testing.T) {
	srv := newTestServer(t)

	got, err := GetText(srv.URL + "/ratings.tsv")
	require.NoError(t, err)
	assert.Equal(t, testContent, got)

	_, err = GetText(srv.URL + "/nope.tsv")
	assert.ErrorIs(t, err, ErrorURLNotFound)

	_, err = GetText(srv.URL + "/broken")
	assert.Error(t, err)
}
