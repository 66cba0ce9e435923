package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
	maxResponseBytes   = 4 << 20
)

type Config struct {
	Endpoint    string
	Token       string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
	// Transport overrides the base round tripper, mostly for tests.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client posts GraphQL operations to the cart service. Calls go through a circuit breaker that
// trips on consecutive transport failures only: a GraphQL error is a healthy service answering.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
	logger     *slog.Logger
}

type request struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors"`
}

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("graphql endpoint is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	logger := cfg.Logger
	maxFailures := cfg.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:    "cart-graphql",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(cfg.Transport),
		},
		breaker: breaker,
		logger:  logger,
	}, nil
}

// SignedIn reports whether calls carry a customer token.
func (c *Client) SignedIn() bool {
	return c.token != ""
}

// do runs one operation and decodes its data into out. Every failure it returns is a
// *domain.RemoteError except a data payload that does not match out.
func (c *Client) do(ctx context.Context, operationName, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(request{OperationName: operationName, Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", operationName, err)
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		c.logger.Debug("graphql transport failed", "operation", operationName, "error", err)
		return domain.NewNetworkError(fmt.Errorf("%s: %w", operationName, err))
	}
	if len(resp.Errors) > 0 {
		return domain.NewGraphQLError(toDomainErrors(resp.Errors)...)
	}

	if out == nil || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operationName, err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded response
	decodeErr := json.Unmarshal(raw, &decoded)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		// Some servers answer GraphQL errors with a 4xx/5xx status; those still count as answers.
		if decodeErr == nil && len(decoded.Errors) > 0 {
			return &decoded, nil
		}
		return nil, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	return &decoded, nil
}

func toDomainErrors(list gqlerror.List) []domain.GraphQLError {
	out := make([]domain.GraphQLError, 0, len(list))
	for _, entry := range list {
		if entry == nil {
			continue
		}

		mapped := domain.GraphQLError{Message: entry.Message}
		if len(entry.Path) > 0 {
			mapped.Path = entry.Path.String()
		}
		if category, ok := entry.Extensions["category"].(string); ok {
			mapped.Category = category
		}
		out = append(out, mapped)
	}

	return out
}
