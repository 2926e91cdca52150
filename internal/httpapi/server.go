package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/ChandanaAtBessemer/Backend/internal/config"
	"github.com/ChandanaAtBessemer/Backend/internal/pdf"
	pdferrors "github.com/ChandanaAtBessemer/Backend/internal/pdf/errors"
)

const (
	// MaxRequestBodySize limits the body of an answer submission
	MaxRequestBodySize = 1 << 20

	missingAnswersMessage = "Missing 'answers' in request"
	shutdownTimeout       = 10 * time.Second
)

// Server serves the form API over HTTP
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	handler    http.Handler
}

// NewServer creates the HTTP API for pdfService
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /get_fields", s.handleGetFields)
	mux.HandleFunc("POST /submit_answers", s.handleSubmitAnswers)
	mux.HandleFunc("GET /download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /server_info", s.handleServerInfo)

	s.handler = s.logRequests(mux)
	return s, nil
}

// Handler returns the API's root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	log.Printf("PDF form server listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) handleGetFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.pdfService.GetFields()
	if err != nil {
		log.Printf("get_fields failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req pdf.SubmitAnswersRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		if s.config.IsDebug() {
			log.Printf("submit_answers: cannot decode body: %v", err)
		}
		writeError(w, http.StatusBadRequest, missingAnswersMessage)
		return
	}

	result, err := s.pdfService.SubmitAnswers(req)
	if err != nil {
		if pdferrors.TypeOf(err) == pdferrors.ErrorTypeMissingAnswers {
			writeError(w, http.StatusBadRequest, missingAnswersMessage)
			return
		}
		log.Printf("submit_answers failed: %v", err)
		writeError(w, http.StatusInternalServerError, "PDF generation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	f, info, err := s.pdfService.OpenDownload(name)
	if err != nil {
		status := pdferrors.TypeOf(err).HTTPStatus()
		if status == http.StatusInternalServerError {
			log.Printf("download %q failed: %v", name, err)
		}
		writeError(w, status, err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// logRequests logs every request in debug mode
func (s *Server) logRequests(next http.Handler) http.Handler {
	if !s.config.IsDebug() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, pdf.ErrorResponse{Status: "error", Message: message})
}
