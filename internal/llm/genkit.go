package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitConfig contains all required parameters for the genkit generator.
type GenkitConfig struct {
	Genkit    *genkit.Genkit
	ModelName string // provider-qualified, e.g. "ollama/llama3.2"
	Logger    *slog.Logger

	// Resilience (zero values use defaults)
	Retry   RetryConfig
	Breaker CircuitBreakerConfig
}

func (cfg GenkitConfig) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// GenkitGenerator runs inference through Genkit against the local model
// runtime. Inference is exclusive: a mutex serializes calls so concurrent
// sessions never interleave requests into the single shared model.
type GenkitGenerator struct {
	inference sync.Mutex // held for the whole model call

	g         *genkit.Genkit
	modelName string
	retry     RetryConfig
	breaker   *CircuitBreaker
	logger    *slog.Logger
}

// NewGenkitGenerator creates a generator with the given configuration.
func NewGenkitGenerator(cfg GenkitConfig) (*GenkitGenerator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}
	breaker := cfg.Breaker
	if breaker.FailureThreshold == 0 {
		breaker = DefaultCircuitBreakerConfig()
	}

	return &GenkitGenerator{
		g:         cfg.Genkit,
		modelName: cfg.ModelName,
		retry:     retry,
		breaker:   NewCircuitBreaker(breaker),
		logger:    cfg.Logger,
	}, nil
}

// Generate implements Generator.
// Concurrent callers block until the in-flight generation completes.
func (g *GenkitGenerator) Generate(ctx context.Context, req Request) (string, error) {
	g.inference.Lock()
	defer g.inference.Unlock()

	if err := g.breaker.Allow(); err != nil {
		g.logger.Warn("circuit breaker open, rejecting generation",
			"state", g.breaker.State().String())
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	opts := g.buildOptions(req)
	resp, err := g.generateWithRetry(ctx, func(callCtx context.Context) (*ai.ModelResponse, error) {
		return genkit.Generate(callCtx, g.g, opts...)
	})
	if err != nil {
		g.breaker.Failure()
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	g.breaker.Success()
	return strings.TrimSpace(resp.Text()), nil
}

// buildOptions translates a Request into genkit generate options.
func (g *GenkitGenerator) buildOptions(req Request) []ai.GenerateOption {
	msgs := make([]*ai.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Role == RoleAssistant {
			msgs = append(msgs, ai.NewModelMessage(ai.NewTextPart(m.Text)))
		} else {
			msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(m.Text)))
		}
	}
	msgs = append(msgs, ai.NewUserMessage(ai.NewTextPart(req.Message)))

	opts := []ai.GenerateOption{
		ai.WithModelName(g.modelName),
		ai.WithMessages(msgs...),
		ai.WithConfig(&ai.GenerationCommonConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     float64(req.Temperature),
			StopSequences:   req.Stop,
		}),
	}
	if req.System != "" {
		opts = append(opts, ai.WithSystem(req.System))
	}
	return opts
}
