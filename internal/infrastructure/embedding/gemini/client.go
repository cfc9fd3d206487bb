package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
	"github.com/policyatlas/evidence-engine/internal/infrastructure/resilience"
)

// Client issues query-embedding requests against a Gemini-style embedding
// endpoint. Exactly one request per question; a failed call surfaces as
// domain.ErrEmbedding and is never retried here.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Options struct {
	Timeout time.Duration
	// Executor, when set, wraps calls in a circuit breaker. Retry attempts
	// are forced to 1: retry policy belongs to the caller.
	Executor *resilience.Executor
}

func New(baseURL, model string) *Client {
	return NewWithOptions(baseURL, model, Options{})
}

func NewWithOptions(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.Executor,
	}
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model":    c.model,
		"text":     text,
		"taskType": "query",
	}

	var response struct {
		Vector []float32 `json:"vector"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/embed", request, &response, "embed query")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "embedding.query", call, classifyEmbeddingError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", err)
	}
	if len(response.Vector) == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", fmt.Errorf("empty vector in response"))
	}
	return response.Vector, nil
}

// classifyEmbeddingError records every failure against the breaker but marks
// nothing retryable; the engine performs a single attempt per question.
func classifyEmbeddingError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}
