// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/bioexplorer/internal/chat"
	"github.com/pdiddy/bioexplorer/internal/export"
	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/oracle"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`

	// Upstream fields are set when the retrieval backend failed.
	UpstreamStatus  int    `json:"upstreamStatus,omitempty"`
	UpstreamMessage string `json:"upstreamMessage,omitempty"`
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Query   string               `json:"query"`
	Filters *types.SearchFilters `json:"filters,omitempty"`
}

// chatReply is the body returned by POST /api/chat.
type chatReply struct {
	types.ChatResponse
	AnswerHTML string    `json:"answer_html"`
	Turns      int       `json:"turns"`
	Evidence   *evidence `json:"evidence,omitempty"`
}

// searchReply is the body returned by GET /api/search.
type searchReply struct {
	types.SearchResponse
	Evidence *evidence `json:"evidence,omitempty"`
}

// evidence is the section spread of an answer's citations.
type evidence struct {
	metrics.Diversity
	Diverse bool `json:"diverse"`
}

// evidenceOf returns nil when m carries no section data.
func evidenceOf(m *types.ResponseMetrics) *evidence {
	sum, ok := metrics.Extract(m)
	if !ok {
		return nil
	}
	d := sum.Diversity()
	if d.Distinct == 0 {
		return nil
	}
	return &evidence{Diversity: d, Diverse: d.Diverse()}
}

func (s *Server) search(c *gin.Context) {
	filters := types.FiltersFromValues(c.Request.URL.Query())
	id, sess := s.sessionFor(c)
	c.Header(SessionHeader, id)

	resp, err := sess.search.Search(c.Request.Context(), filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, searchReply{SearchResponse: *resp, Evidence: evidenceOf(resp.Metrics)})
}

func (s *Server) detail(c *gin.Context) {
	_, sess := s.sessionFor(c)
	d, err := sess.search.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) kpi(c *gin.Context) {
	_, sess := s.sessionFor(c)
	k, err := sess.search.Kpi(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (s *Server) filterValues(c *gin.Context) {
	fv, err := s.backend.FilterValues(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fv)
}

func (s *Server) health(c *gin.Context) {
	h, err := s.backend.Health(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// export runs the search described by the query string and streams the
// page in the requested format.
func (s *Server) export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	_, sess := s.sessionFor(c)
	resp, err := sess.search.Search(c.Request.Context(), types.FiltersFromValues(c.Request.URL.Query()))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="studies%s"`, format.Extension()))
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, resp.Studies); err != nil {
		s.logger.Error("export failed mid-stream", zap.String("format", string(format)), zap.Error(err))
	}
}

func (s *Server) ask(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid chat request: " + err.Error()})
		return
	}
	id, sess := s.chatSessionFor(c)
	c.Header(SessionHeader, id)
	if req.Filters != nil {
		sess.chat.SetFilters(*req.Filters)
	}

	resp, err := sess.chat.Ask(c.Request.Context(), req.Query)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chatReply{
		ChatResponse: *resp,
		AnswerHTML:   chat.RenderAnswer(resp.Answer),
		Turns:        sess.chat.History.Len(),
		Evidence:     evidenceOf(resp.Metrics),
	})
}

func (s *Server) history(c *gin.Context) {
	id, sess := s.chatSessionFor(c)
	c.Header(SessionHeader, id)
	c.JSON(http.StatusOK, sess.chat.History.Responses())
}

func (s *Server) clearHistory(c *gin.Context) {
	id, sess := s.chatSessionFor(c)
	c.Header(SessionHeader, id)
	sess.chat.History.Clear()
	c.Status(http.StatusNoContent)
}

// fail maps service errors onto HTTP responses. Empty results are never
// errors; they are served as 200 by the handlers.
func (s *Server) fail(c *gin.Context, err error) {
	var re *oracle.RetrievalError
	switch {
	case errors.Is(err, context.Canceled):
		c.Status(499)
	case errors.Is(err, types.ErrQueryTooShort):
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, search.ErrStudyNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, search.ErrSuperseded):
		c.JSON(http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &re):
		s.logger.Warn("retrieval backend failed", zap.String("op", re.Op), zap.Int("status", re.StatusCode), zap.Error(err))
		if !re.Upstream() {
			c.JSON(http.StatusBadGateway, errorBody{Error: "retrieval backend unreachable"})
			return
		}
		c.JSON(http.StatusBadGateway, errorBody{
			Error:           "retrieval backend unavailable",
			UpstreamStatus:  re.StatusCode,
			UpstreamMessage: re.Error(),
		})
	default:
		s.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}
