package daemon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scoreflow/internal/api"
	"scoreflow/internal/config"
	"scoreflow/internal/logging"
	"scoreflow/internal/pipeline"
	"scoreflow/internal/services"
)

// maxUploadBytes bounds the decoded request body. Score uploads are images
// or PDFs; anything past this is rejected before a session exists.
const maxUploadBytes = 64 << 20

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.APIBind),
		token:  cfg.APIToken,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/process-score", authMiddleware(srv.token, srv.handleProcessScore))
	mux.HandleFunc("/api/sessions", authMiddleware(srv.token, srv.handleSessions))
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Processing holds the connection for the full engine timeouts, so
		// the write bound sits above their sum.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleHealth is unauthenticated and always returns 200; engine absence is
// reported, not treated as unhealthiness.
func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", "")
		return
	}
	omrHealth, renderHealth := s.daemon.orchestrator.EngineHealth()
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ServiceAvailability: api.ServiceAvailability{
			OMREngine:    omrHealth.Ready,
			RenderEngine: renderHealth.Ready,
		},
	})
}

func (s *apiServer) handleProcessScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", "")
		return
	}

	var req api.ProcessRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "", "")
		return
	}
	if req.ScoreID == "" || req.FileData == "" || req.FileType == "" {
		s.writeError(w, http.StatusBadRequest, "scoreId, fileData, and fileType are required", req.ScoreID, "")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "fileData is not valid base64", req.ScoreID, "")
		return
	}

	result, err := s.daemon.orchestrator.Process(r.Context(), pipeline.Request{
		ScoreID:  req.ScoreID,
		FileName: req.FileName,
		FileType: req.FileType,
		Data:     data,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrValidation) {
			status = http.StatusBadRequest
		}
		var sessionErr *pipeline.SessionError
		sessionID := ""
		if errors.As(err, &sessionErr) {
			sessionID = sessionErr.SessionID
		}
		s.writeError(w, status, err.Error(), req.ScoreID, sessionID)
		return
	}

	s.writeJSON(w, http.StatusOK, api.FromResult(result))
}

func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", "")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.daemon.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error(), "", "")
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: api.FromSessions(rows)})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", "")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, scoreID, sessionID string) {
	s.writeJSON(w, status, api.ErrorResponse{
		Success:   false,
		Error:     message,
		ScoreID:   scoreID,
		SessionID: sessionID,
	})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
