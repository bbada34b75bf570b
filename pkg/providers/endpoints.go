package providers

import (
	"github.com/cecil-the-coder/llm-fallback/pkg/types"
)

// endpoint describes where and how a provider type is called
type endpoint struct {
	// URL is the full chat-completions URL for the service
	URL string

	// AuthScheme selects the credential header layout ("bearer" or
	// "anthropic")
	AuthScheme string
}

// defaultEndpoints maps each provider type to its fixed completion
// endpoint. Gemini is reached through its OpenAI-compatible surface so the
// outbound payload stays uniform across providers.
var defaultEndpoints = map[types.ProviderType]endpoint{
	types.ProviderTypeOpenAI: {
		URL:        "https://api.openai.com/v1/chat/completions",
		AuthScheme: "bearer",
	},
	types.ProviderTypeAnthropic: {
		URL:        "https://api.anthropic.com/v1/messages",
		AuthScheme: "anthropic",
	},
	types.ProviderTypeGemini: {
		URL:        "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions",
		AuthScheme: "bearer",
	},
	types.ProviderTypeMistral: {
		URL:        "https://api.mistral.ai/v1/chat/completions",
		AuthScheme: "bearer",
	},
	types.ProviderTypeOpenRouter: {
		URL:        "https://openrouter.ai/api/v1/chat/completions",
		AuthScheme: "bearer",
	},
}

// endpointFor resolves the endpoint for a provider, honoring a BaseURL
// override for self-hosted or API-compatible deployments.
func endpointFor(p *types.Provider) endpoint {
	ep, ok := defaultEndpoints[p.Type]
	if !ok {
		// Unknown types speak the OpenAI dialect; they must supply a
		// BaseURL to be reachable.
		ep = endpoint{AuthScheme: "bearer"}
	}
	if p.BaseURL != "" {
		ep.URL = p.BaseURL
	}
	return ep
}
