// Package app wires the support agent together: configuration, logging,
// the genkit/Ollama runtime, the customer directory, the knowledge index,
// the chat pipeline, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/ugorjiizu/globus-assessment/internal/api"
	"github.com/ugorjiizu/globus-assessment/internal/chat"
	"github.com/ugorjiizu/globus-assessment/internal/config"
	"github.com/ugorjiizu/globus-assessment/internal/directory"
	"github.com/ugorjiizu/globus-assessment/internal/intent"
	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
	"github.com/ugorjiizu/globus-assessment/internal/llm"
	"github.com/ugorjiizu/globus-assessment/internal/log"
	"github.com/ugorjiizu/globus-assessment/internal/session"
)

// App holds all initialized components.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Directory *directory.Directory
	Index     *knowledge.Index
	Sessions  *session.Store
	Pipeline  *chat.Pipeline
	Server    *api.Server
}

// Setup creates and initializes the application.
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	a := &App{Config: cfg}
	a.Logger = provideLogger(cfg)

	g, embedder, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	a.Embedder = embedder

	dir, err := directory.LoadWorkbook(cfg.CustomersPath, a.Logger.With("component", "directory"))
	if err != nil {
		return nil, fmt.Errorf("loading customer directory: %w", err)
	}
	a.Directory = dir

	index, err := knowledge.BuildIndexFromFile(ctx, cfg.ProductsPath, cfg.ChunkSize,
		knowledge.NewEmbeddingFunc(embedder), a.Logger.With("component", "knowledge"))
	if err != nil {
		return nil, fmt.Errorf("building knowledge index: %w", err)
	}
	a.Index = index

	gen, err := llm.NewGenkitGenerator(llm.GenkitConfig{
		Genkit:    g,
		ModelName: "ollama/" + cfg.ModelName,
		Logger:    a.Logger.With("component", "llm"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	classifier := intent.NewClassifier(gen, cfg.IntentMaxTokens, cfg.IntentTemperature,
		a.Logger.With("component", "intent"))

	a.Sessions = session.NewStore(cfg.MaxHistoryTurns)
	a.Pipeline = chat.New(classifier, index, gen, dir,
		chat.NewComposer(cfg.PromptCharBudget, cfg.RetrievalCharBudget),
		chat.Config{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			TopK:        cfg.TopK,
		},
		a.Logger.With("component", "chat"))

	srv, err := api.NewServer(api.ServerConfig{
		Logger:       a.Logger.With("component", "api"),
		Pipeline:     a.Pipeline,
		SessionStore: a.Sessions,
		IsDev:        true, // local single-host deployment, no TLS
		RateBurst:    cfg.RateBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	a.Server = srv

	a.Logger.Info("application initialized",
		"model", cfg.ModelName,
		"customers", dir.Len(),
		"chunks", index.Len(),
	)
	return a, nil
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Config.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		a.Logger.Info("http server stopped")
		return nil
	}
}

// provideLogger builds the application logger from config.
func provideLogger(cfg *config.Config) log.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}

// provideGenkit initializes the genkit runtime against the local Ollama
// server and registers the chat model and the embedder. Ollama requires
// explicit model registration, there is no auto-discovery.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, ai.Embedder, error) {
	ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
	g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
	if g == nil {
		return nil, nil, errors.New("initializing genkit with ollama provider")
	}

	ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
		Name: cfg.ModelName,
		Type: "chat",
	}, nil)
	ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)

	embedder := ollama.Embedder(g, cfg.OllamaHost)
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	return g, embedder, nil
}
