package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/voocel/litellm"

	"github.com/voocel/copilot/schema"
)

// connectTimeout bounds dialing the endpoint.
const connectTimeout = 10 * time.Second

// LiteLLMClient implements Client using the litellm library
type LiteLLMClient struct {
	client   *litellm.Client
	config   Config
	provider string
}

// NewLiteLLMClient creates a client for the configured provider.
func NewLiteLLMClient(config Config) *LiteLLMClient {
	provider := ResolveProvider(config.Provider, config.Model)

	var baseURL []string
	if config.BaseURL != "" {
		baseURL = append(baseURL, config.BaseURL)
	}

	// No retries. No http.Client timeout either: it would also cut off a slowly
	// consumed stream body, so deadlines are applied per call through the context.
	opts := []litellm.ClientOption{
		litellm.WithResilience(litellm.ResilienceConfig{ConnectTimeout: connectTimeout}),
	}
	switch provider {
	case ProviderAnthropic:
		opts = append(opts, litellm.WithAnthropic(config.APIKey, baseURL...))
	case ProviderGemini:
		opts = append(opts, litellm.WithGemini(config.APIKey, baseURL...))
	default:
		// OpenAI-compatible, including local Ollama endpoints
		opts = append(opts, litellm.WithOpenAI(config.APIKey, baseURL...))
	}
	opts = append(opts, litellm.WithDefaults(config.MaxTokens, config.Temperature))

	return &LiteLLMClient{
		client:   litellm.New(opts...),
		config:   config,
		provider: provider,
	}
}

// Model returns the default model name
func (c *LiteLLMClient) Model() string {
	return c.config.Model
}

// Provider returns the resolved provider family
func (c *LiteLLMClient) Provider() string {
	return c.provider
}

// Complete sends one chat completion. Every failure is a *schema.TransportError.
// The configured timeout bounds a buffered call as a whole and a streamed call
// until its response starts; reading the stream afterwards is not bounded.
func (c *LiteLLMClient) Complete(ctx context.Context, req Request) (Response, error) {
	litellmReq := c.buildRequest(req)
	if req.Stream {
		return c.stream(ctx, litellmReq)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}
	resp, err := c.client.Chat(ctx, litellmReq)
	if err != nil {
		return nil, schema.NewTransportError(litellmReq.Model, "complete", err)
	}
	return convertResponseFromLiteLLM(resp), nil
}

func (c *LiteLLMClient) stream(ctx context.Context, litellmReq *litellm.Request) (Response, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	var timer *time.Timer
	if c.config.Timeout > 0 {
		timer = time.AfterFunc(c.config.Timeout, func() {
			cancel(fmt.Errorf("stream not started within %s: %w", c.config.Timeout, context.DeadlineExceeded))
		})
	}

	reader, err := c.client.Stream(ctx, litellmReq)
	expired := timer != nil && !timer.Stop()
	if err == nil && expired {
		_ = reader.Close()
		err = context.Cause(ctx)
	}
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
			err = fmt.Errorf("%w: %w", cause, err)
		}
		cancel(nil)
		return nil, schema.NewTransportError(litellmReq.Model, "stream", err)
	}

	return &Streamed{Stream: NewStream(&chunkReader{
		model:  litellmReq.Model,
		reader: reader,
		cancel: func() { cancel(nil) },
	})}, nil
}

// buildRequest applies configured defaults; per-call values win.
func (c *LiteLLMClient) buildRequest(req Request) *litellm.Request {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	litellmReq := &litellm.Request{
		Model:    model,
		Messages: convertMessagesToLiteLLM(req.Messages),
		Tools:    convertToolsToLiteLLM(req.Tools),
		Stream:   req.Stream,
	}
	if req.Stream && c.provider == ProviderOpenAI {
		litellmReq.Messages = flattenToolRounds(litellmReq.Messages)
	}
	if len(litellmReq.Tools) > 0 && req.ToolChoice != "" {
		litellmReq.ToolChoice = req.ToolChoice
	}

	switch {
	case req.Temperature != nil:
		litellmReq.Temperature = litellm.Float64Ptr(*req.Temperature)
	case c.config.Temperature != 0:
		litellmReq.Temperature = litellm.Float64Ptr(c.config.Temperature)
	}
	switch {
	case req.MaxTokens > 0:
		litellmReq.MaxTokens = litellm.IntPtr(req.MaxTokens)
	case c.config.MaxTokens > 0:
		litellmReq.MaxTokens = litellm.IntPtr(c.config.MaxTokens)
	}
	return litellmReq
}

// chunkReader adapts a litellm.StreamReader to ChunkReader.
type chunkReader struct {
	model  string
	reader litellm.StreamReader
	cancel func()
	ended  bool
}

func (r *chunkReader) Read() (string, error) {
	if r.ended {
		return "", io.EOF
	}
	chunk, err := r.reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.ended = true
			return "", io.EOF
		}
		return "", schema.NewTransportError(r.model, "stream read", err)
	}
	if chunk == nil {
		return "", nil
	}
	if chunk.Done {
		r.ended = true
		if chunk.Content == "" {
			return "", io.EOF
		}
	}
	return chunk.Content, nil
}

// Close cancels the request before closing the body, which unblocks a pending Read.
func (r *chunkReader) Close() error {
	r.cancel()
	return r.reader.Close()
}
