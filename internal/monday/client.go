// Package monday provides a GraphQL client for the monday.com API.
// It implements a deep module interface - simple methods hiding GraphQL documents,
// transport details and error normalisation.
package monday

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/h0rv/bugdrop/internal/auth"
	"github.com/machinebox/graphql"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the monday GraphQL endpoint.
	DefaultEndpoint = "https://api.monday.com/v2"
	// DefaultAPIVersion is the API version pinned on every request.
	DefaultAPIVersion = "2024-01"
)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithFileEndpoint overrides the endpoint used for multipart uploads.
// It defaults to the GraphQL endpoint.
func WithFileEndpoint(url string) Option {
	return func(c *Client) {
		c.fileEndpoint = url
	}
}

// WithAPIVersion overrides the pinned API-Version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets the base HTTP client. Its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.baseHTTP = hc
	}
}

// WithTimeout bounds each HTTP exchange. Zero means no bound beyond the context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is a monday.com GraphQL API client.
// It holds only immutable configuration and is safe for concurrent use.
type Client struct {
	gql        *graphql.Client // JSON requests
	multipart  *graphql.Client // file uploads
	credential auth.Credential
	logger     *zap.Logger

	endpoint     string
	fileEndpoint string
	apiVersion   string
	timeout      time.Duration
	baseHTTP     *http.Client
}

// New creates a new monday GraphQL client for the given credential.
// An absent credential is accepted; every call then fails with ErrAuthMissing.
func New(credential auth.Credential, opts ...Option) *Client {
	c := &Client{
		credential: credential,
		logger:     zap.NewNop(),
		endpoint:   DefaultEndpoint,
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fileEndpoint == "" {
		c.fileEndpoint = c.endpoint
	}

	httpClient := c.httpClient()
	c.gql = graphql.NewClient(c.endpoint, graphql.WithHTTPClient(httpClient))
	c.multipart = graphql.NewClient(c.fileEndpoint, graphql.WithHTTPClient(httpClient), graphql.UseMultipartForm())

	return c
}

// httpClient builds the http.Client shared by both GraphQL clients.
func (c *Client) httpClient() *http.Client {
	base := http.DefaultTransport
	hc := &http.Client{}
	if c.baseHTTP != nil {
		*hc = *c.baseHTTP
		if c.baseHTTP.Transport != nil {
			base = c.baseHTTP.Transport
		}
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	hc.Transport = otelhttp.NewTransport(&responseTransport{next: base})
	return hc
}

// HasCredential reports whether the client holds a token.
func (c *Client) HasCredential() bool {
	return c.credential.Present()
}

// Execute sends a GraphQL operation with variables and decodes the data
// payload into resp. Errors are ErrAuthMissing, *TransportError,
// *GraphQLError, or a wrapped network/decoding error.
func (c *Client) Execute(ctx context.Context, operation string, vars map[string]interface{}, resp interface{}) error {
	req := graphql.NewRequest(operation)
	for k, v := range vars {
		req.Var(k, v)
	}
	return c.makeRequest(ctx, c.gql, operationName(operation), req, resp)
}

// File is a binary payload sent with Upload.
type File struct {
	Name string
	Data []byte
}

// Upload sends operation as a multipart form with fields query, variables
// and file. Error semantics match Execute.
func (c *Client) Upload(ctx context.Context, operation string, vars map[string]interface{}, file File, resp interface{}) error {
	req := graphql.NewRequest(operation)
	for k, v := range vars {
		req.Var(k, v)
	}
	req.File("file", file.Name, bytes.NewReader(file.Data))
	return c.makeRequest(ctx, c.multipart, operationName(operation), req, resp)
}

// makeRequest executes a GraphQL request with authentication.
// This is a helper method to avoid repeating the header setup and error mapping.
func (c *Client) makeRequest(ctx context.Context, gql *graphql.Client, name string, req *graphql.Request, resp interface{}) error {
	if !c.credential.Present() {
		return ErrAuthMissing
	}

	req.Header.Set("Authorization", c.credential.Token())
	req.Header.Set("API-Version", c.apiVersion)

	start := time.Now()
	err := gql.Run(ctx, req, resp)
	c.logger.Debug("monday request",
		zap.String("operation", name),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))

	return normalizeError(err)
}

// normalizeError strips url.Error and graphql wrapping from the typed errors
// so callers receive them unchanged.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	var ge *GraphQLError
	if errors.As(err, &ge) {
		return ge
	}
	if ctxErr := contextError(err); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("monday request failed: %w", err)
}

func contextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	}
	return nil
}
