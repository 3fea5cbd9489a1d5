package extractor

import (
	"fmt"

	"winelist/internal/config"
	"winelist/internal/port"
)

// ProviderFactory creates a WineExtractor from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.WineExtractor, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a WineExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.LLMProviderConfig) (port.WineExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured provider chain. A single provider is
// returned as is; several are wrapped in a FallbackExtractor. It returns nil
// when no credential is configured.
func NewFromConfig(cfg *config.LLMConfig) (port.WineExtractor, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var (
		extractors []port.WineExtractor
		names      []string
	)
	for _, pc := range []*config.LLMProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
		if pc == nil || pc.APIKey == "" {
			continue
		}
		ex, err := NewExtractor(pc)
		if err != nil {
			return nil, fmt.Errorf("extractor.NewFromConfig: %w", err)
		}
		extractors = append(extractors, ex)
		names = append(names, pc.Provider)
	}

	switch len(extractors) {
	case 0:
		return nil, nil
	case 1:
		return extractors[0], nil
	}
	return NewFallbackExtractor(extractors, names), nil
}
