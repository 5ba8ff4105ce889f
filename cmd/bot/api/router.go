package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/otel/trace"

	awsbot "github.com/adityagautam-dev/aws-telegram-bot"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/middleware"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/telegram"
)

// RouterOptions carries the optional pieces of the HTTP surface.
type RouterOptions struct {
	Logger         *slog.Logger
	Metrics        *middleware.HTTPMetrics
	TracerProvider trace.TracerProvider
	// Webhook receives Telegram updates when the bot runs in webhook mode.
	Webhook http.Handler
}

// NewRouter builds the HTTP handler. The command API is mounted only when a
// JWT secret is configured.
func NewRouter(s *ApiService, opts RouterOptions) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = s.Logger
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	otelOpts := []otelchi.Option{otelchi.WithChiRoutes(r)}
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelchi.WithTracerProvider(opts.TracerProvider))
	}
	r.Use(otelchi.Middleware("awsbot", otelOpts...))
	r.Use(middleware.InjectLogger(log))
	r.Use(middleware.AccessLogger(log))
	r.Use(opts.Metrics.Middleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/spec.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.oai.openapi")
		_, _ = w.Write(awsbot.OpenAPIYAML)
	})

	r.Get("/spec.json", func(w http.ResponseWriter, r *http.Request) {
		jsonData, err := yaml.YAMLToJSON(awsbot.OpenAPIYAML)
		if err != nil {
			log.ErrorContext(r.Context(), "failed to convert spec to JSON", "error", err)
			middleware.WriteError(w, http.StatusInternalServerError, "internal", "failed to render spec")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jsonData)
	})

	if opts.Webhook != nil {
		r.Post(telegram.WebhookPath, opts.Webhook.ServeHTTP)
	}

	if s.Config.JwtSecret == "" {
		log.Warn("JWT_SECRET not set, command API disabled")
		return r, nil
	}

	validator, err := requestValidator()
	if err != nil {
		return nil, err
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.VerifyJWT(s.Config.JwtSecret))
		r.Use(validator)

		r.Get("/commands", s.ListCommands)
		r.Post("/commands", s.RunCommand)
		r.Get("/events", s.StreamEvents)
	})

	return r, nil
}

// requestValidator checks requests against the embedded OpenAPI document.
// Authentication is left to VerifyJWT.
func requestValidator() (func(http.Handler) http.Handler, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(awsbot.OpenAPIYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := spec.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}
	spec.Servers = nil

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, &nethttpmiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			middleware.WriteError(w, statusCode, "invalid_request", message)
		},
		SilenceServersWarning: true,
	}), nil
}
