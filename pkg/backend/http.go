package backend

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
)

//go:embed openapi.yaml
var defaultDocument []byte

// ErrUnknownOperation is returned when the API document lacks an operation.
var ErrUnknownOperation = errors.New("backend: operation not declared")

// StatusError reports a non-2xx response.
type StatusError struct {
	Operation string
	Status    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s: unexpected status %d", e.Operation, e.Status)
}

type endpoint struct {
	method string
	path   string
}

// HTTPOption customises an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient injects the transport client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout caps each request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithDocument replaces the embedded OpenAPI document.
func WithDocument(doc []byte) HTTPOption {
	return func(c *HTTPClient) {
		if len(doc) > 0 {
			c.document = doc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HTTPClient implements Client over HTTP. Endpoints are resolved by
// operationId from an OpenAPI 3 document.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	document  []byte
	logger    *zap.Logger
	endpoints map[string]endpoint
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient loads and validates the API document and returns a client
// rooted at baseURL.
func NewHTTPClient(ctx context.Context, baseURL string, options ...HTTPOption) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("backend: parse base url: %w", err)
	}

	c := &HTTPClient{
		baseURL:  baseURL,
		client:   http.DefaultClient,
		document: defaultDocument,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}

	endpoints, err := resolveEndpoints(ctx, c.document)
	if err != nil {
		return nil, err
	}
	for _, op := range []string{OpGetContractData, OpGetFinancialData, OpSavePMRData} {
		if _, ok := endpoints[op]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
		}
	}
	c.endpoints = endpoints
	return c, nil
}

func resolveEndpoints(ctx context.Context, raw []byte) (map[string]endpoint, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("backend: load api document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("backend: validate api document: %w", err)
	}

	out := make(map[string]endpoint)
	if doc.Paths == nil {
		return out, nil
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			out[op.OperationID] = endpoint{method: method, path: path}
		}
	}
	return out, nil
}

// FetchContractData implements Client. A 404 yields (nil, nil).
func (c *HTTPClient) FetchContractData(ctx context.Context, contractNumber string) (*ContractData, error) {
	var out ContractData
	found, err := c.do(ctx, OpGetContractData, contractNumber, nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// FetchFinancialData implements Client. A 404 yields (nil, nil).
func (c *HTTPClient) FetchFinancialData(ctx context.Context, contractNumber string) (*FinancialData, error) {
	var out FinancialData
	found, err := c.do(ctx, OpGetFinancialData, contractNumber, nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// SavePMRData implements Client.
func (c *HTTPClient) SavePMRData(ctx context.Context, data PMRData) error {
	_, err := c.do(ctx, OpSavePMRData, data.ContractNumber, data, nil)
	return err
}

func (c *HTTPClient) do(ctx context.Context, operation, contractNumber string, body any, out any) (bool, error) {
	ep, ok := c.endpoints[operation]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownOperation, operation)
	}
	if strings.TrimSpace(contractNumber) == "" {
		return false, fmt.Errorf("backend: %s: contract number is required", operation)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("backend: %s: encode body: %w", operation, err)
		}
		payload = bytes.NewReader(encoded)
	}

	target := c.baseURL + strings.ReplaceAll(ep.path, "{contractNumber}", url.PathEscape(contractNumber))
	req, err := http.NewRequestWithContext(reqCtx, ep.method, target, payload)
	if err != nil {
		return false, fmt.Errorf("backend: %s: build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("backend request",
		zap.String("operation", operation),
		zap.String("method", ep.method),
		zap.String("url", target),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("backend: %s: %w", operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound && out != nil {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &StatusError{Operation: operation, Status: resp.StatusCode}
	}
	if out == nil {
		return true, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("backend: %s: read body: %w", operation, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("backend: %s: decode body: %w", operation, err)
	}
	return true, nil
}
