package provider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/triagekit-dev/triagekit/support"
)

const (
	defaultModel       = openai.GPT4oMini
	defaultCallTimeout = 15 * time.Second

	// Provider calls are rate limited so a burst of sessions cannot
	// exhaust the API quota.
	defaultCallsPerSecond = 5
	defaultBurst          = 10
)

// OpenAIProvider backs both the fallback TextClassifier and the
// ResponseGenerator with the OpenAI chat API.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithModel overrides the default model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.model = model
	}
}

// WithCallTimeout bounds each API call.
func WithCallTimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.timeout = d
	}
}

// WithRateLimit sets the sustained call rate and burst.
func WithRateLimit(perSecond float64, burst int) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewOpenAIProvider creates a provider from an API key. An empty key falls
// back to OPENAI_API_KEY.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	p := &OpenAIProvider{
		client:  openai.NewClient(apiKey),
		model:   defaultModel,
		timeout: defaultCallTimeout,
		limiter: rate.NewLimiter(rate.Limit(defaultCallsPerSecond), defaultBurst),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

const classifySystemPrompt = `You classify customer support queries.
Categories:
- technical: API issues, bugs, integrations, technical problems
- billing: payments, refunds, subscriptions, pricing, invoices
- sales: upgrades, demos, new features, purchasing
- general: account questions, how-to, basic support
- complaint: complaints, dissatisfaction, problems with service
Return only the category name.`

// Classify asks the model for a category. Output not matching one of the
// five categories maps to QueryUnknown.
func (p *OpenAIProvider) Classify(ctx context.Context, query string) (support.QueryType, error) {
	content, err := p.complete(ctx, GenerateRequest{
		System:      classifySystemPrompt,
		Prompt:      fmt.Sprintf("Query: %q", query),
		Temperature: 0.1,
		MaxTokens:   10,
	})
	if err != nil {
		return support.QueryUnknown, err
	}

	qt, ok := support.ParseQueryType(strings.ToLower(strings.TrimSpace(content)))
	if !ok {
		return support.QueryUnknown, nil
	}
	return qt, nil
}

// Generate produces a free-text reply for a specialist.
func (p *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return p.complete(ctx, req)
}

func (p *OpenAIProvider) complete(ctx context.Context, req GenerateRequest) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
