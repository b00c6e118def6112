package apiclient

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rooms-client/internal/domain"
	"rooms-client/internal/observability"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// ContractMode controls what happens when a response does not match the
// OpenAPI document
type ContractMode string

const (
	ContractOff    ContractMode = "off"
	ContractWarn   ContractMode = "warn"
	ContractStrict ContractMode = "strict"
)

//go:embed openapi/rooms-api.yaml
var apiDocument []byte

// Contract validates API responses against the embedded OpenAPI document
type Contract struct {
	router routers.Router
	mode   ContractMode
}

// LoadContract parses the embedded document. It returns nil for ContractOff,
// and a nil *Contract checks nothing.
func LoadContract(ctx context.Context, mode ContractMode) (*Contract, error) {
	switch mode {
	case ContractOff, "":
		return nil, nil
	case ContractWarn, ContractStrict:
	default:
		return nil, fmt.Errorf("unknown contract validation mode %q", mode)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(apiDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("OpenAPI document is invalid: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAPI router: %w", err)
	}

	observability.Debug("OpenAPI contract validation enabled", slog.String("mode", string(mode)))
	return &Contract{router: router, mode: mode}, nil
}

// Check validates one response. In warn mode violations are only logged and
// counted; in strict mode they are returned as ErrContractViolation.
func (c *Contract) Check(ctx context.Context, op string, req *http.Request, status int, header http.Header, body []byte) error {
	if c == nil {
		return nil
	}
	log := observability.FromContext(ctx)

	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		log.Debug("request path not found in OpenAPI document",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path))
		return nil
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: status,
		Header: header,
		Body:   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		observability.ContractViolationsTotal.WithLabelValues(op).Inc()
		log.Warn("response validation failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()))
		if c.mode == ContractStrict {
			return fmt.Errorf("%w: %v", domain.ErrContractViolation, err)
		}
	}
	return nil
}
