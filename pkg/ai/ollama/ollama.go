package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/polderlab/actornet/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// ScorerOllamaClient provides embeddings for the similarity scorer from
// a locally-hosted Ollama server.
type ScorerOllamaClient struct {
	embeddingModel string

	timeoutMin int
	reqLock    *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// NewScorerOllamaClientParams configures a ScorerOllamaClient.
type NewScorerOllamaClientParams struct {
	EmbeddingModel string

	BaseURL string
	ApiKey  string

	TimeoutMinutes        int
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewScorerOllamaClient creates a client connected to the Ollama server
// at BaseURL (or the default when empty).
func NewScorerOllamaClient(params NewScorerOllamaClientParams) (*ScorerOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	var client *api.Client
	if u != nil {
		client = api.NewClient(u, httpClient)
	} else {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 5
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &ScorerOllamaClient{
		embeddingModel: params.EmbeddingModel,

		timeoutMin: timeoutMin,
		reqLock:    semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		Client: client,
	}, nil
}

func (c *ScorerOllamaClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics clears the accumulated usage metrics.
func (c *ScorerOllamaClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated usage metrics.
func (c *ScorerOllamaClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}
