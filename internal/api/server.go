// Package api exposes the browse and preview operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/browser"
	"github.com/flakysalt/InkyPi/internal/ftpx"
	"github.com/flakysalt/InkyPi/internal/logging"
	"github.com/flakysalt/InkyPi/internal/metrics"
)

// BrowseService is what the handlers need from the facade. Each call owns
// its own session; the HTTP layer never reuses one across requests.
type BrowseService interface {
	ListDirectory(settings browser.DisplaySettings, path string) (*ftpx.Listing, error)
	PreviewImage(settings browser.DisplaySettings, path string) (string, error)
}

// browserFactory gives every request a fresh facade; Browser instances are
// single-request by design.
type browserFactory struct{}

func (browserFactory) ListDirectory(settings browser.DisplaySettings, path string) (*ftpx.Listing, error) {
	return browser.New().ListDirectory(settings, path)
}

func (browserFactory) PreviewImage(settings browser.DisplaySettings, path string) (string, error) {
	return browser.New().PreviewImage(settings, path)
}

// Server is the HTTP server for the browse API.
type Server struct {
	svc BrowseService

	// Defaults applied to requests that omit the fields.
	defaultTimeout  time.Duration
	defaultEncoding string
}

// NewServer creates a server backed by real FTP sessions.
func NewServer(defaultTimeout time.Duration, defaultEncoding string) *Server {
	return &Server{
		svc:             browserFactory{},
		defaultTimeout:  defaultTimeout,
		defaultEncoding: defaultEncoding,
	}
}

// NewServerWithService creates a server with a custom service, for tests.
func NewServerWithService(svc BrowseService) *Server {
	return &Server{svc: svc, defaultTimeout: 15 * time.Second, defaultEncoding: "latin-1"}
}

// Handler returns the routed and instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/ftp/list", s.handleListDirectory)
	mux.HandleFunc("POST /api/v1/ftp/preview", s.handlePreviewImage)

	return logging.Middleware(metrics.Middleware(mux))
}

// browseRequest is the JSON body shared by both endpoints.
type browseRequest struct {
	Server   string `json:"server"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseTLS   bool   `json:"use_tls"`
	Passive  *bool  `json:"passive"`
	Encoding string `json:"encoding"`
	Path     string `json:"path"`
}

// settings converts the request to display settings, filling defaults for
// absent fields the way the original options schema does.
func (s *Server) settings(req browseRequest) browser.DisplaySettings {
	out := browser.DefaultSettings()
	out.Server = req.Server
	if req.Port != 0 {
		out.Port = req.Port
	}
	if req.Username != "" {
		out.Username = req.Username
	}
	out.Password = req.Password
	out.UseTLS = req.UseTLS
	if req.Passive != nil {
		out.Passive = *req.Passive
	}
	if req.Encoding != "" {
		out.Encoding = req.Encoding
	} else {
		out.Encoding = s.defaultEncoding
	}
	out.Timeout = s.defaultTimeout
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	var req browseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Server == "" {
		s.sendError(w, http.StatusBadRequest, "server is required")
		return
	}
	if req.Path == "" {
		req.Path = "/"
	}

	listing, err := s.svc.ListDirectory(s.settings(req), req.Path)
	if err != nil {
		logging.Error("list directory failed",
			zap.String("server", req.Server), zap.String("path", req.Path), zap.Error(err))
		s.sendError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handlePreviewImage(w http.ResponseWriter, r *http.Request) {
	var req browseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Server == "" {
		s.sendError(w, http.StatusBadRequest, "server is required")
		return
	}
	if req.Path == "" {
		s.sendError(w, http.StatusBadRequest, "image path is required")
		return
	}

	preview, err := s.svc.PreviewImage(s.settings(req), req.Path)
	if err != nil {
		logging.Error("preview image failed",
			zap.String("server", req.Server), zap.String("path", req.Path), zap.Error(err))
		s.sendError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"preview": preview})
}

// statusFor flattens the error taxonomy to HTTP statuses. Everything except
// a malformed request maps to 500; the kinds stay visible in the message.
func statusFor(err error) int {
	if errors.Is(err, ftpx.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("encoding response", zap.Error(err))
	}
}
