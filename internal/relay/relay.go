// Package relay is the credential-holding forwarder between the app and the
// upstream chat-completion API. It also checks product links on request.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/metrics"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

const (
	defaultModel       = "gpt-4"
	defaultTemperature = float32(0.7)
)

type Config struct {
	UpstreamURL     string
	APIKey          string // used instead of the caller's bearer when set
	Timeout         time.Duration
	ValidateTimeout time.Duration
}

type Server struct {
	cfg       Config
	log       *slog.Logger
	upstream  *resty.Client
	validator *resty.Client
}

func New(log *slog.Logger, cfg Config) *Server {
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = 5 * time.Second
	}
	return &Server{
		cfg:       cfg,
		log:       log,
		upstream:  resty.New().SetTimeout(cfg.Timeout).SetHeader("Content-Type", "application/json"),
		validator: resty.New().SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(s.log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/gift-suggestions", s.GiftSuggestions)
	r.Post("/api/validate-url", s.ValidateURL)
	return r
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode relay response", "error", err)
	}
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// GiftSuggestions forwards a chat-completion request upstream. Upstream
// failures are mirrored as-is.
func (s *Server) GiftSuggestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	callerToken, ok := middleware.BearerToken(r)
	if !ok {
		writeJSON(w, r, http.StatusUnauthorized, errorBody{Error: "Missing authorization header"})
		return
	}

	var body dto.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if body.Model == "" {
		body.Model = defaultModel
	}
	if body.Temperature == nil || *body.Temperature == 0 {
		t := defaultTemperature
		body.Temperature = &t
	}

	token := callerToken
	if s.cfg.APIKey != "" {
		token = s.cfg.APIKey
	}

	log.Info("forwarding chat completion", "model", body.Model, "messages", len(body.Messages))
	resp, err := s.upstream.R().
		SetContext(r.Context()).
		SetAuthToken(token).
		SetBody(&body).
		Post(s.cfg.UpstreamURL)
	if err != nil {
		log.Error("upstream request failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: err.Error()})
		return
	}

	metrics.RelayUpstreamTotal.WithLabelValues(strconv.Itoa(resp.StatusCode())).Inc()
	if !json.Valid(resp.Body()) {
		log.Error("upstream returned non-JSON body", "status", resp.StatusCode())
		writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error", Message: "upstream returned an invalid JSON body"})
		return
	}
	if resp.IsError() {
		log.Warn("upstream error", "status", resp.StatusCode(), "body", resp.String())
	}
	writeRaw(w, resp.StatusCode(), resp.Body())
}

// ValidateURL reports whether a HEAD request to url succeeds with a 2xx,
// following redirects.
func (s *Server) ValidateURL(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body dto.ValidateURLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "Missing URL parameter"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.ValidateTimeout)
	defer cancel()

	resp, err := s.validator.R().SetContext(ctx).Head(body.URL)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "request timed out"
		}
		log.Info("url validation failed", "url", body.URL, "error", err)
		writeJSON(w, r, http.StatusOK, dto.ValidateURLResponse{Valid: false, Error: msg})
		return
	}

	status := resp.StatusCode()
	writeJSON(w, r, http.StatusOK, dto.ValidateURLResponse{
		Valid:  status >= 200 && status < 300,
		Status: status,
	})
}
