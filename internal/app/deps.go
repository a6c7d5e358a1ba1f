package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"

	"datachat/internal/config"
	"datachat/internal/llm"
	"datachat/internal/logger"
)

// Deps bundles common runtime dependencies for the service.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	LLM    llm.Client
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	client, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		LLM:    client,
	}, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		log.Info("using Gemini generation client", "model", cfg.GeminiModel)
		return llm.NewGeminiClient(cfg.GeminiModel), nil
	case "openai":
		log.Info("using OpenAI generation client", "model", cfg.OpenAIModel)
		return llm.NewOpenAIClient(openai.ChatModel(cfg.OpenAIModel)), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: gemini, openai)", cfg.LLMProvider)
	}
}
