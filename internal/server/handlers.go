// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/internal/extract"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// queryWordsFromFile bounds how many words of an uploaded document become
// the search query. Whole documents make poor lexical queries; the
// opening passage carries the topic.
const queryWordsFromFile = 100

// Handler holds the dependencies the HTTP routes need.
type Handler struct {
	engine  *engine.Engine
	store   *artifact.Store
	cfg     types.EngineConfig
	dataDir string
	version string
	logger  *slog.Logger
}

// NewHandler builds the route handler.
func NewHandler(eng *engine.Engine, store *artifact.Store, cfg types.EngineConfig, dataDir, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:  eng,
		store:   store,
		cfg:     cfg,
		dataDir: dataDir,
		version: version,
		logger:  logger,
	}
}

func (h *Handler) register(e *echo.Echo) {
	e.GET("/", h.root)
	e.GET("/health", h.health)
	e.GET("/search", h.searchGet)
	e.POST("/search", h.searchPost)
	e.POST("/search-from-file", h.searchFromFile)
}

// searchRequest is the POST /search body.
type searchRequest struct {
	Query  string `json:"query"`
	Method string `json:"method"`
	TopK   int    `json:"top_k"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": "scholar-engine",
		"version": h.version,
		"methods": types.Methods(),
	})
}

func (h *Handler) health(c echo.Context) error {
	statuses := h.store.Status()
	status := "ok"
	code := http.StatusOK
	if !h.store.Ready() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status":    status,
		"data_dir":  h.dataDir,
		"artifacts": statuses,
	})
}

func (h *Handler) searchPost(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}
	return h.search(c, req)
}

func (h *Handler) searchGet(c echo.Context) error {
	req := searchRequest{
		Query:  c.QueryParam("query"),
		Method: c.QueryParam("method"),
	}
	if raw := c.QueryParam("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "top_k must be an integer"})
		}
		req.TopK = n
	}
	return h.search(c, req)
}

func (h *Handler) searchFromFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "multipart field \"file\" is required"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable upload"})
	}
	defer src.Close()

	text, err := extract.Text(fh.Filename, src, h.cfg.MaxQueryChars)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	req := searchRequest{
		Query:  engine.FirstWords(text, queryWordsFromFile),
		Method: c.FormValue("method"),
	}
	if raw := c.FormValue("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "top_k must be an integer"})
		}
		req.TopK = n
	}

	resp, err := h.runSearch(c, req)
	if err != nil {
		return h.searchError(c, err)
	}
	// The query field holds what was actually ranked; the full extraction
	// goes back alongside it so the caller can see what was read.
	return c.JSON(http.StatusOK, fileSearchResponse{SearchResponse: resp, ExtractedQuery: text})
}

// fileSearchResponse extends the search reply with the full extracted
// document text.
type fileSearchResponse struct {
	types.SearchResponse
	ExtractedQuery string `json:"extracted_query"`
}

// search applies request defaults, runs the engine, and maps error kinds
// onto status codes.
func (h *Handler) search(c echo.Context, req searchRequest) error {
	resp, err := h.runSearch(c, req)
	if err != nil {
		return h.searchError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// runSearch fills request defaults and executes the engine call.
func (h *Handler) runSearch(c echo.Context, req searchRequest) (types.SearchResponse, error) {
	if req.Method == "" {
		req.Method = string(types.MethodHybrid)
	}
	if req.TopK == 0 {
		req.TopK = h.cfg.DefaultTopK
	}
	return h.engine.Search(c.Request().Context(), req.Query, types.Method(req.Method), req.TopK)
}

// searchError translates engine failures. A client that went away gets
// nothing; everything else gets a JSON error body.
func (h *Handler) searchError(c echo.Context, err error) error {
	var (
		validation  *engine.ValidationError
		unavailable *artifact.UnavailableError
		upstream    *engine.UpstreamError
		consistency *engine.ConsistencyError
	)

	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validation.Error()})

	case errors.As(err, &unavailable):
		h.logger.Warn("artifact unavailable", "artifact", unavailable.Artifact, "err", unavailable.Err)
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: unavailable.Error()})

	case errors.As(err, &upstream):
		h.logger.Error("embedding provider failed", "err", upstream.Err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: upstream.Error()})

	case errors.As(err, &consistency):
		h.logger.Error("artifact bundle inconsistent", "id", consistency.ID)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: consistency.Error()})

	case errors.Is(err, context.Canceled):
		// Client disconnected; there is nobody to answer.
		return nil

	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "search timed out"})
	}

	h.logger.Error("search failed", "err", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
