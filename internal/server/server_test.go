// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/embed"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

func newServerForCORS(t *testing.T, cfg types.ServerConfig) *Server {
	t.Helper()

	dir := t.TempDir()
	store := artifact.Open(dir)
	t.Cleanup(func() { store.Close() })

	engCfg := types.DefaultEngineConfig()
	eng, err := engine.New(engCfg, store, embed.NewStaticEmbedder(4), engine.WithLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	h := NewHandler(eng, store, engCfg, dir, "test", discardLogger())
	return New(cfg, h, discardLogger())
}

func preflight(s *Server, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestCORSConfiguredOrigin(t *testing.T) {
	s := newServerForCORS(t, types.ServerConfig{Addr: ":0", AllowedOrigin: "https://app.example.com"})

	rec := preflight(s, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = preflight(s, "https://evil.example.com")
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORSDevDefaults(t *testing.T) {
	s := newServerForCORS(t, types.ServerConfig{Addr: ":0"})

	rec := preflight(s, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = preflight(s, "https://elsewhere.example.com")
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
