package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/tuple"
	"github.com/kailas-cloud/snowball/internal/logger"
	extractionuc "github.com/kailas-cloud/snowball/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/snowball/internal/usecase/health"
)

const defaultMaxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves tuple construction over HTTP for one loaded run.
type Server struct {
	cfg           *configuration.Configuration
	extraction    *extractionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	cfg *configuration.Configuration,
	extraction *extractionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:          cfg,
		extraction:   extraction,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		configurationErrorHandler,
		sentinelHandler(domain.ErrVectorSpaceModel, http.StatusInternalServerError, ErrorCodeModel),
		sentinelHandler(domain.ErrUnknownContext, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// WithMaxBodyBytes limits request bodies.
func (s *Server) WithMaxBodyBytes(n int) *Server {
	if n > 0 {
		s.maxBodyBytes = int64(n)
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/configuration", s.GetConfiguration)
		r.Post("/tuples", s.CreateTuples)
		r.Post("/sentences", s.ExtractSentences)
	})
}

// CreateTuples handles POST /v1/tuples.
func (s *Server) CreateTuples(w http.ResponseWriter, r *http.Request) {
	var req TuplesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Occurrences) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "occurrences must not be empty")
		return
	}

	occs := make([]tuple.Occurrence, len(req.Occurrences))
	for i, o := range req.Occurrences {
		if o.Ent1 == "" || o.Ent2 == "" {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("occurrences[%d]: ent1 and ent2 are required", i))
			return
		}
		occs[i] = o.toDomain()
	}

	items, err := s.extraction.Build(r.Context(), s.cfg, occs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tupleList(items))
}

// ExtractSentences handles POST /v1/sentences.
func (s *Server) ExtractSentences(w http.ResponseWriter, r *http.Request) {
	var req SentencesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Sentences) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "sentences must not be empty")
		return
	}

	items, err := s.extraction.Extract(r.Context(), s.cfg, req.Sentences)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tupleList(items))
}

// GetConfiguration handles GET /v1/configuration.
func (s *Server) GetConfiguration(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ConfigurationResponse{
		Parameters:          s.cfg.Parameters(),
		E1Type:              s.cfg.E1Type(),
		E2Type:              s.cfg.E2Type(),
		Seeds:               len(s.cfg.Seeds()),
		NegativeSeeds:       len(s.cfg.NegativeSeeds()),
		Vocabulary:          s.cfg.VSM().Size(),
		ThresholdSimilarity: s.cfg.ThresholdSimilarity(),
		InstanceConfidence:  s.cfg.InstanceConfidence(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrVectorSpaceModel,
		domain.ErrUnknownContext,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// configurationErrorHandler exposes the offending key, which is safe to show.
func configurationErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, ErrorCodeConfiguration, ce.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	if r.Context().Err() != nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeUnavailable, "request canceled")
		return
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
