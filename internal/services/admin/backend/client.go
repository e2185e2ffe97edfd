package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the production marketplace API.
const DefaultBaseURL = "https://www.offerboats.com"

const tracerName = "github.com/offerboat/admin/internal/services/admin/backend"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client calls the marketplace REST API.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	tracer  trace.Tracer
}

// NewClient builds a client for baseURL.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: parsed,
		client:  httpClient,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request is one call to the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is sent as application/json unless ContentType says otherwise.
	Body        []byte
	ContentType string
	// Token is sent as a bearer credential when set.
	Token string
}

// Do sends req and returns the response body of a 2xx response.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if c == nil {
		return nil, errors.New("backend client is not configured")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := c.resolve(req.Path, req.Query)

	ctx, span := c.tracer.Start(ctx, method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", req.Path),
	)

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &Error{Kind: KindTransport, Method: method, Endpoint: req.Path, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, &Error{Kind: KindTransport, Method: method, Endpoint: req.Path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		return nil, &Error{Kind: KindStatus, Method: method, Endpoint: req.Path, Status: resp.StatusCode, Err: statusMessage(payload)}
	}
	return payload, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	endpoint := strings.TrimRight(c.baseURL.String(), "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func statusMessage(payload []byte) error {
	if message := gjson.GetBytes(payload, "message").String(); message != "" {
		return errors.New(message)
	}
	return nil
}

// FetchCollection GETs an endpoint and decodes its collection.
func (c *Client) FetchCollection(ctx context.Context, endpoint Endpoint, token string) ([]Item, error) {
	payload, err := c.Do(ctx, Request{Method: http.MethodGet, Path: endpoint.Path, Query: endpoint.Query, Token: token})
	if err != nil {
		return nil, err
	}
	items, err := ParseCollection(payload, endpoint.ArrayPath)
	if err != nil {
		return nil, withEndpoint(err, http.MethodGet, endpoint.Path)
	}
	return items, nil
}

// FetchItem GETs a single JSON object.
func (c *Client) FetchItem(ctx context.Context, path string, token string) (Item, error) {
	payload, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return Item{}, err
	}
	item, err := ParseItem(payload)
	if err != nil {
		return Item{}, withEndpoint(err, http.MethodGet, path)
	}
	return item, nil
}

// Send issues a mutation. The response body is returned when it is a JSON
// object and ignored otherwise.
func (c *Client) Send(ctx context.Context, method string, path string, body []byte, token string) (Item, error) {
	payload, err := c.Do(ctx, Request{Method: method, Path: path, Body: body, Token: token})
	if err != nil {
		return Item{}, err
	}
	item, err := ParseItem(payload)
	if err != nil {
		return Item{}, nil
	}
	return item, nil
}

func withEndpoint(err error, method, path string) error {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		backendErr.Method = method
		backendErr.Endpoint = path
		return backendErr
	}
	return err
}
