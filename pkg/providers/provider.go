// Package providers selects and constructs the conversational backend the
// relay forwards prompts to.
package providers

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/nomiclaw/pkg/config"
	anthropicprovider "github.com/tinyland-inc/nomiclaw/pkg/providers/anthropic"
	"github.com/tinyland-inc/nomiclaw/pkg/providers/nomi"
)

// Provider is one conversational backend. SendMessage forwards a single
// prompt and returns the backend's reply text; the backend keeps its own
// conversation memory, so no history travels with the call.
type Provider interface {
	SendMessage(ctx context.Context, text string) (string, error)
	Name() string
}

// CreateProvider builds the backend named by the configuration.
func CreateProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Providers.Default {
	case "nomi":
		nc := cfg.Providers.Nomi
		if nc.APIKey == "" {
			return nil, fmt.Errorf("nomi provider: api_key is required")
		}
		if nc.NomiID == "" {
			return nil, fmt.Errorf("nomi provider: nomi_id is required")
		}
		var opts []nomi.Option
		if nc.APIBase != "" {
			opts = append(opts, nomi.WithBaseURL(nc.APIBase))
		}
		return nomi.NewClient(nc.APIKey, nc.NomiID, opts...), nil

	case "anthropic":
		ac := cfg.Providers.Anthropic
		if ac.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider: api_key is required")
		}
		return anthropicprovider.NewProvider(ac.APIKey, ac.Model, ac.APIBase, ac.SystemPrompt), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Providers.Default)
	}
}
