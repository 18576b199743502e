// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

func bundleServer(t *testing.T, missing ...string) *httptest.Server {
	t.Helper()

	absent := map[string]bool{}
	for _, name := range missing {
		absent[name] = true
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/bundle/")
		if absent[name] {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("content of " + name))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func fetchConfig(baseURL string) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "scholar-engine-test/0"},
		BaseURL:    baseURL + "/bundle/",
	}
}

func TestFetchAll(t *testing.T) {
	ts := bundleServer(t)
	dir := t.TempDir()
	var out bytes.Buffer

	result, err := FetchAll(context.Background(), ts.Client(), fetchConfig(ts.URL), dir, &out)
	require.NoError(t, err)

	assert.Equal(t, len(Files), result.Downloaded)
	assert.Zero(t, result.Skipped)
	assert.False(t, result.HasFailures())
	assert.Equal(t, len(Files), result.Total())

	for _, name := range Files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "content of "+name, string(data))
	}
}

func TestFetchAllSkipsExisting(t *testing.T) {
	ts := bundleServer(t)
	dir := t.TempDir()

	existing := Files[0]
	require.NoError(t, os.WriteFile(filepath.Join(dir, existing), []byte("local copy"), 0o644))

	var out bytes.Buffer
	result, err := FetchAll(context.Background(), ts.Client(), fetchConfig(ts.URL), dir, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, len(Files)-1, result.Downloaded)

	// The existing file is never overwritten.
	data, err := os.ReadFile(filepath.Join(dir, existing))
	require.NoError(t, err)
	assert.Equal(t, "local copy", string(data))
}

func TestFetchAllCountsFailures(t *testing.T) {
	ts := bundleServer(t, Files[1])
	dir := t.TempDir()

	var out bytes.Buffer
	result, err := FetchAll(context.Background(), ts.Client(), fetchConfig(ts.URL), dir, &out)
	require.NoError(t, err)

	// One miss does not abort the batch; the rest still lands.
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, len(Files)-1, result.Downloaded)
	assert.True(t, result.HasFailures())
	assert.Contains(t, out.String(), "failed: "+Files[1])

	_, err = os.Stat(filepath.Join(dir, Files[1]))
	assert.True(t, os.IsNotExist(err), "failed download must not leave a file behind")
}

func TestFetchAllRequiresBaseURL(t *testing.T) {
	_, err := FetchAll(context.Background(), http.DefaultClient, types.FetchConfig{}, t.TempDir(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFetchAllCreatesDataDir(t *testing.T) {
	ts := bundleServer(t)
	dir := filepath.Join(t.TempDir(), "nested", "data")

	_, err := FetchAll(context.Background(), ts.Client(), fetchConfig(ts.URL), dir, &bytes.Buffer{})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
