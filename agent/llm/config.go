package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
	openaicompatx "github.com/tanpawarit/hitl-purchase-agent/pkg/openaicompat"
)

type Backend string

const (
	// BackendEino drives the model through an eino prompt→model graph.
	BackendEino Backend = "eino"
	// BackendOpenAI calls the chat completions API with the openai-go SDK.
	BackendOpenAI Backend = "openai"
)

type Config struct {
	Backend            Backend       `envconfig:"BACKEND" split_words:"true" default:"eino"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	switch c.Backend {
	case BackendEino, BackendOpenAI:
	default:
		return fmt.Errorf("%w: unsupported llm backend=%q", contractx.ErrValidation, c.Backend)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) Provider() openaicompatx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openaicompatx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
