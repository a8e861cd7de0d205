// Package chi exposes the search, upload and analytics use cases as a JSON API.
package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	fileexport "github.com/kailas-cloud/buscadoc/internal/export"
	"github.com/kailas-cloud/buscadoc/internal/logger"
	analyticsuc "github.com/kailas-cloud/buscadoc/internal/usecase/analytics"
	authuc "github.com/kailas-cloud/buscadoc/internal/usecase/auth"
	datasetuc "github.com/kailas-cloud/buscadoc/internal/usecase/dataset"
	exportuc "github.com/kailas-cloud/buscadoc/internal/usecase/export"
	healthuc "github.com/kailas-cloud/buscadoc/internal/usecase/health"
	searchuc "github.com/kailas-cloud/buscadoc/internal/usecase/search"
	"github.com/kailas-cloud/buscadoc/internal/version"
)

const (
	maxJSONBody = 1 << 20
	// multipart framing on top of the file itself
	multipartOverhead = 1 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Config holds transport settings.
type Config struct {
	CookieName     string
	CookieSecure   bool
	SessionTTL     time.Duration
	MaxUploadBytes int64
}

// Server holds the HTTP handlers.
type Server struct {
	auth          *authuc.Service
	search        *searchuc.Service
	datasets      *datasetuc.Service
	analytics     *analyticsuc.Service
	exports       *exportuc.Service
	health        *healthuc.Service
	cfg           Config
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	auth *authuc.Service,
	search *searchuc.Service,
	datasets *datasetuc.Service,
	analytics *analyticsuc.Service,
	exports *exportuc.Service,
	health *healthuc.Service,
	cfg Config,
) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "buscadoc_session"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = datasetuc.DefaultMaxUploadBytes
	}
	s := &Server{
		auth:      auth,
		search:    search,
		datasets:  datasets,
		analytics: analytics,
		exports:   exports,
		health:    health,
		cfg:       cfg,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrInvalidCredentials, http.StatusUnauthorized, codeInvalidCredentials),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedFile, http.StatusBadRequest, codeUnsupportedFile),
		sentinelHandler(domain.ErrEmptyDataset, http.StatusBadRequest, codeEmptyDataset),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, codeFileTooLarge),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusBadRequest, codeUnsupportedFormat),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrPersist, http.StatusInternalServerError, codePersistFailed),
	}
	return s
}

// Register mounts the API on r. Authentication and no-cache headers apply to
// every route except login, logout, health and metrics.
func (s *Server) Register(r chi.Router) {
	r.Post("/auth/login", s.Login)
	r.Post("/auth/logout", s.Logout)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.SessionMiddleware())
		r.Use(NoCache)

		r.Post("/search", s.Search)
		r.Post("/upload", s.Upload)
		r.Post("/clear", s.Clear)
		r.Get("/status", s.Status)
		r.Post("/update_data", s.UpdateData)
		r.Post("/export", s.Export)
		r.Get("/analytics/data", s.AnalyticsData)
		r.Get("/analytics/searches", s.AnalyticsSearches)
		r.Get("/analytics/uploads", s.AnalyticsUploads)
	})
}

// Login handles POST /auth/login. Accepts a JSON body or a form.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	} else if !s.decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.setSessionCookie(w, sess.ID())
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		User:    sess.User(),
		Name:    s.auth.DisplayName(sess.User()),
	})
}

// Logout handles POST /auth/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if err := s.auth.Logout(r.Context(), c.Value); err != nil {
			logger.FromContext(r.Context()).Warn("logout failed", zap.Error(err))
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)
	var body searchRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	req, src, err := searchParams(body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.search.Search(r.Context(), sess, req, src)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Results:      out.Results,
		Query:        req.Query(),
		Mode:         string(req.Mode()),
		IsExcelData:  src == domhist.Uploaded,
		TotalRecords: out.TotalRecords,
	})
}

// Upload handles POST /upload with a multipart "file" part.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)
	limit := s.cfg.MaxUploadBytes + multipartOverhead
	if r.ContentLength > limit {
		s.handleDomainError(w, r, fmt.Errorf("%w: limit is %d bytes", domain.ErrFileTooLarge, s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			s.handleDomainError(w, r, fmt.Errorf("%w: limit is %d bytes", domain.ErrFileTooLarge, s.cfg.MaxUploadBytes))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, codeValidationFailed, "no file selected")
		default:
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid multipart body")
		}
		return
	}
	defer func() { _ = file.Close() }()

	sum, err := s.datasets.Upload(r.Context(), sess, header.Filename, file)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		Filename: sum.Filename,
		Records:  sum.Records,
		Columns:  sum.Columns,
	})
}

// Clear handles POST /clear.
func (s *Server) Clear(w http.ResponseWriter, r *http.Request) {
	if err := s.datasets.Clear(r.Context(), mustSession(r)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Status handles GET /status.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)
	st, err := s.datasets.Status(r.Context(), sess)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := statusResponse{
		User:          sess.User(),
		Name:          s.auth.DisplayName(sess.User()),
		HasExcelData:  st.HasUpload,
		Filename:      st.Filename,
		Records:       st.Records,
		SampleRecords: st.InternalRecords,
	}
	if st.HasUpload {
		at := st.UploadedAt.UTC()
		resp.UploadedAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateData handles POST /update_data. A null value clears the field.
func (s *Server) UpdateData(w http.ResponseWriter, r *http.Request) {
	var body updateRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	var value string
	if body.Value != nil {
		value = *body.Value
	}
	if err := s.datasets.UpdateRecord(r.Context(), mustSession(r), body.ExpBN, body.Field, value); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Export handles POST /export. The body is a search request plus a format;
// a blank query exports the whole source.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	format, err := fileexport.ParseFormat(body.Format)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	req, src, err := searchParams(body.searchRequest)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	file, err := s.exports.Export(r.Context(), mustSession(r), req, src, format, &buf)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-Records", strconv.Itoa(file.Records))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// AnalyticsData handles GET /analytics/data?source=internal|excel.
func (s *Server) AnalyticsData(w http.ResponseWriter, r *http.Request) {
	src, err := domhist.ParseSource(r.URL.Query().Get("source"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	stats, err := s.analytics.Dataset(r.Context(), mustSession(r), src)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AnalyticsSearches handles GET /analytics/searches.
func (s *Server) AnalyticsSearches(w http.ResponseWriter, r *http.Request) {
	stats, err := s.analytics.Searches(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AnalyticsUploads handles GET /analytics/uploads.
func (s *Server) AnalyticsUploads(w http.ResponseWriter, r *http.Request) {
	entries, err := s.analytics.Uploads(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": entries})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Records: report.Records,
		Version: version.Version,
	})
}

func searchParams(body searchRequest) (request.Request, domhist.Source, error) {
	src, err := domhist.ParseSource(body.DataSource)
	if err != nil {
		return request.Request{}, "", err
	}
	req, err := request.New(body.Query, mode.Mode(strings.ToLower(body.Mode)), body.Field, body.CaseSensitive)
	if err != nil {
		return request.Request{}, "", err
	}
	return req, src, nil
}

// mustSession returns the session SessionMiddleware stored. Routes calling it
// are only mounted behind that middleware.
func mustSession(r *http.Request) domsess.Session {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		panic("chi: route served without session middleware")
	}
	return sess
}

// decodeJSON reads a JSON body, writing a 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// detailedSentinels carry messages written for end users; the full error
// text is returned for them.
var detailedSentinels = []error{
	domain.ErrInvalidQuery,
	domain.ErrInvalidRequest,
	domain.ErrFileTooLarge,
	domain.ErrUnsupportedFormat,
}

var sentinels = []error{
	domain.ErrUnauthorized,
	domain.ErrInvalidCredentials,
	domain.ErrRateLimited,
	domain.ErrUnsupportedFile,
	domain.ErrEmptyDataset,
	domain.ErrRecordNotFound,
	domain.ErrNotFound,
	domain.ErrPersist,
}

// safeDomainMessage returns a client message without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range detailedSentinels {
		if errors.Is(err, s) {
			var fe *domain.FieldError
			if errors.As(err, &fe) {
				return fe.Error()
			}
			return trimWrapping(err.Error(), s.Error())
		}
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// trimWrapping drops context added in front of the sentinel text.
func trimWrapping(msg, sentinel string) string {
	if i := strings.Index(msg, sentinel); i > 0 {
		return msg[i:]
	}
	return msg
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
