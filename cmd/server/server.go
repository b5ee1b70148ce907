package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/njchilds90/mathcmd/engine"
	"github.com/njchilds90/mathcmd/internal/config"
	errx "github.com/njchilds90/mathcmd/internal/core/error"
	logx "github.com/njchilds90/mathcmd/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Server is the HTTP envelope around the engine.
type Server struct {
	engine *engine.Engine
	batch  *engine.BatchRunner
	router *mux.Router
	limits config.HTTPConfig
}

// NewServer wires routes. Extra middlewares (rate limiting, concurrency cap)
// run after CORS and before the handlers.
func NewServer(e *engine.Engine, batch *engine.BatchRunner, limits config.HTTPConfig, mws ...mux.MiddlewareFunc) *Server {
	s := &Server{
		engine: e,
		batch:  batch,
		router: mux.NewRouter(),
		limits: limits,
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader, "Retry-After"},
	})
	s.router.Use(requestLogger, recoverer, c.Handler)
	for _, mw := range mws {
		s.router.Use(mw)
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/process_command", s.handleProcessCommand).Methods(http.MethodPost)
	s.router.HandleFunc("/process_batch", s.handleProcessBatch).Methods(http.MethodPost)
	s.router.HandleFunc("/upload_image", s.handleUploadImage).Methods(http.MethodPost)
	s.router.HandleFunc("/units", s.handleUnits).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	for _, p := range []string{"/process_command", "/process_batch", "/upload_image"} {
		s.router.HandleFunc(p, preflight).Methods(http.MethodOptions)
	}
}

type commandRequest struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Commands []string `json:"commands"`
}

type batchResponse struct {
	Responses []engine.Response `json:"responses"`
}

func (s *Server) handleProcessCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Process(r.Context(), req.Text))
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.batch.Run(r.Context(), req.Commands)
	if errors.Is(err, engine.ErrTooManyCommands) {
		writeError(w, errx.New(err, http.StatusBadRequest, "too many commands"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Responses: out})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, errx.TooLarge(err))
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, errx.BadRequest("No image uploaded"))
		default:
			writeError(w, errx.New(err, http.StatusBadRequest, "invalid upload"))
		}
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, errx.BadRequest("No image selected"))
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errx.New(err, http.StatusBadRequest, "invalid upload"))
		return
	}
	resp, err := s.engine.ProcessImage(r.Context(), image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"units": engine.UnitCatalogue()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// decode reads exactly one JSON object no larger than MaxBodyBytes.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errx.TooLarge(err)
		}
		return errx.New(err, http.StatusBadRequest, "invalid JSON")
	}
	if dec.More() {
		return errx.BadRequest("invalid JSON: trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	app := errx.From(err)
	if app.Status >= http.StatusInternalServerError {
		logx.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, app.Status, map[string]string{"error": app.Message})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logx.Error().Interface("panic", rec).Str("path", r.URL.Path).Bytes("stack", debug.Stack()).Msg("handler panicked")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": errx.SystemErrorMessage})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logx.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
