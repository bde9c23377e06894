// Package api serves the analyzer over HTTP.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/ledger"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/report"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// Room for the multipart framing and the questionnaire on top of two files.
const formOverhead = 64 << 10

// OpenFunc decodes an uploaded PDF.
type OpenFunc func(data []byte) (ledger.Document, error)

// OpenPDF is the default OpenFunc.
func OpenPDF(data []byte) (ledger.Document, error) {
	doc, err := extractor.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	Analyzer       *report.Analyzer
	Open           OpenFunc
	Bank           string
	Currency       string
	MaxUploadBytes int
	MetricsEnabled bool
	Limiter        *rate.Limiter
	Log            zerolog.Logger
}

// New returns a Server configured from cfg.
func New(a *report.Analyzer, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		Analyzer:       a,
		Open:           OpenPDF,
		Bank:           cfg.Analysis.Bank,
		Currency:       cfg.Analysis.Currency,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
		Limiter:        rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst),
		Log:            log,
	}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-analyzer",
		BodyLimit:             2*s.MaxUploadBytes + formOverhead,
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(s.requestLogger)

	api := app.Group("/api")
	api.Get("/health", HandleHealth)
	api.Post("/analyze", s.rateLimit, s.HandleAnalyze)
	api.Post("/ledger", s.rateLimit, s.HandleLedger)

	if s.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}
	return app
}

// rateLimit rejects requests once the token bucket is empty.
func (s *Server) rateLimit(c *fiber.Ctx) error {
	if s.Limiter != nil && !s.Limiter.Allow() {
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests. Try again later.")
	}
	return c.Next()
}

// requestLogger tags the request with an id, attaches a request-scoped logger
// to the user context and logs every request when it completes.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	requestID := uuid.NewString()
	c.Set(fiber.HeaderXRequestID, requestID)
	log := logger.WithFields(s.Log, map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": requestID,
	})
	c.SetUserContext(logger.WithContext(c.UserContext(), log))

	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}
	log.Info().Int("status", status).Dur("elapsed", time.Since(start)).Msg("request")
	return err
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		s.Log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(ErrorResponse{Success: false, Error: msg})
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}
