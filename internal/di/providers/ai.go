package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/ai"
	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/logger"
)

// ChatClientHandle wraps the language model client with shutdown capability.
type ChatClientHandle struct {
	ai.ChatClient
	http *ai.HTTPClient
}

// Shutdown implements do.Shutdownable.
func (h *ChatClientHandle) Shutdown() error {
	if h.http != nil {
		h.http.Close()
	}
	return nil
}

// ProvideChatClient provides the chat completion client. Without an API key
// every call fails fast and callers fall back to their defaults.
func ProvideChatClient(i do.Injector) (*ChatClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.LLM.Enabled() {
		log.Warn("No LLM API key configured, sentiment defaults to neutral and recommendations to top rated books")
		return &ChatClientHandle{ChatClient: ai.DisabledClient{}}, nil
	}

	httpClient := ai.NewHTTPClient(ai.HTTPConfig{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
	}, log.Logger)

	log.Info("LLM client configured", "base_url", cfg.LLM.BaseURL, "model", cfg.LLM.Model)

	return &ChatClientHandle{
		ChatClient: ai.NewBreakerClient(httpClient, ai.DefaultBreakerConfig(), log.Logger),
		http:       httpClient,
	}, nil
}

// ProvideSentimentClassifier provides the review sentiment classifier.
func ProvideSentimentClassifier(i do.Injector) (*ai.SentimentClassifier, error) {
	chat := do.MustInvoke[*ChatClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return ai.NewSentimentClassifier(chat.ChatClient, log.Logger), nil
}

// ProvideRecommendationEngine provides the book recommendation engine.
func ProvideRecommendationEngine(i do.Injector) (*ai.RecommendationEngine, error) {
	chat := do.MustInvoke[*ChatClientHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return ai.NewRecommendationEngine(chat.ChatClient, storeHandle.Store, log.Logger), nil
}
