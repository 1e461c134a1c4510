package ai

import (
	"fmt"
	"strings"
)

// Provider names a hosted text-completion backend.
type Provider string

const (
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"

	DefaultProvider = ProviderGroq
)

// UnmarshalText lets configuration decoding normalize and validate provider names.
func (p *Provider) UnmarshalText(text []byte) error {
	name := Provider(strings.ToLower(strings.TrimSpace(string(text))))
	switch name {
	case "":
		*p = DefaultProvider
	case ProviderGroq, ProviderGemini:
		*p = name
	default:
		return fmt.Errorf("unsupported ai provider: %s", text)
	}
	return nil
}

func (p Provider) String() string {
	return string(p)
}
