package middleware

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"storefront-client/internal/observability"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Spec is the OpenAPI document describing the /api/v1 surface.
//
//go:embed openapi.yaml
var Spec []byte

// OpenAPIValidatorConfig holds configuration for OpenAPI validation middleware
type OpenAPIValidatorConfig struct {
	Enabled bool
	// Spec is the OpenAPI document; the embedded one is used when empty
	Spec []byte
	// SpecPath, when set, loads the document from disk instead
	SpecPath          string
	ValidateRequests  bool
	ValidateResponses bool
	// SkipPaths are path prefixes that are never validated
	SkipPaths []string
}

// DefaultOpenAPIValidatorConfig validates requests everywhere except production.
func DefaultOpenAPIValidatorConfig() *OpenAPIValidatorConfig {
	env := os.Getenv("ENVIRONMENT")

	return &OpenAPIValidatorConfig{
		Enabled:          env != "production" && env != "prod",
		Spec:             Spec,
		ValidateRequests: true,
		SkipPaths:        []string{"/health", "/metrics", "/ws/"},
	}
}

func passThrough(next http.Handler) http.Handler { return next }

// OpenAPIValidator rejects requests that do not match the document with a 400
// JSON error. A document that fails to load disables validation instead of
// blocking traffic. Paths the document does not know are left to the router.
func OpenAPIValidator(config *OpenAPIValidatorConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultOpenAPIValidatorConfig()
	}
	if !config.Enabled {
		slog.Info("OpenAPI validation disabled")
		return passThrough
	}

	router, version, err := buildRouter(config)
	if err != nil {
		slog.Error("OpenAPI validation unavailable",
			slog.String("path", config.SpecPath),
			slog.String("error", err.Error()))
		return passThrough
	}

	slog.Info("OpenAPI validation enabled",
		slog.Bool("validate_requests", config.ValidateRequests),
		slog.Bool("validate_responses", config.ValidateResponses),
		slog.String("spec_version", version))

	options := &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipPath(r.URL.Path, config.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			logger := observability.FromContext(r.Context()).With(
				slog.String("operation", route.Operation.OperationID))

			if config.ValidateRequests {
				if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
					logger.Warn("request validation failed", slog.String("error", err.Error()))
					writeValidationError(w, describeValidationError(err))
					return
				}
			}

			if !config.ValidateResponses {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)
			validateResponse(r.Context(), logger, input, recorder)
		})
	}
}

func buildRouter(config *OpenAPIValidatorConfig) (routers.Router, string, error) {
	loader := openapi3.NewLoader()

	doc, err := loadSpec(loader, config)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, "", fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build OpenAPI router: %w", err)
	}
	return router, doc.Info.Version, nil
}

func loadSpec(loader *openapi3.Loader, config *OpenAPIValidatorConfig) (*openapi3.T, error) {
	if config.SpecPath != "" {
		return loader.LoadFromFile(config.SpecPath)
	}
	data := config.Spec
	if len(data) == 0 {
		data = Spec
	}
	return loader.LoadFromData(data)
}

// Response mismatches are only logged; the body has already been sent.
func validateResponse(ctx context.Context, logger *slog.Logger, input *openapi3filter.RequestValidationInput, rec *responseRecorder) {
	err := openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 rec.statusCode,
		Header:                 rec.Header(),
		Body:                   io.NopCloser(bytes.NewReader(rec.body)),
		Options:                input.Options,
	})
	if err != nil {
		logger.Warn("response validation failed",
			slog.Int("status", rec.statusCode),
			slog.String("error", err.Error()))
	}
}

// describeValidationError keeps the message short enough for a UI to show.
func describeValidationError(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			return fmt.Sprintf("invalid parameter %q: %s", reqErr.Parameter.Name, reqErr.Reason)
		case reqErr.RequestBody != nil:
			var schemaErr *openapi3.SchemaError
			if errors.As(reqErr.Err, &schemaErr) {
				if field := strings.Join(schemaErr.JSONPointer(), "."); field != "" {
					return fmt.Sprintf("invalid request body: %s: %s", field, schemaErr.Reason)
				}
				return "invalid request body: " + schemaErr.Reason
			}
			return "invalid request body"
		}
	}
	return "request validation failed: " + err.Error()
}

func shouldSkipPath(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func writeValidationError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}
