package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// MaxMaxMessageLength is the hard ceiling on the backend message budget.
// The Nomi API rejects longer prompts, so configuring past it is an error
// rather than something to silently clamp.
const MaxMaxMessageLength = 600

// ErrMessageLengthTooLarge is returned when modifiers.max_message_length
// exceeds MaxMaxMessageLength.
var ErrMessageLengthTooLarge = fmt.Errorf(
	"modifiers.max_message_length must be %d or less", MaxMaxMessageLength)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels  ChannelsConfig  `json:"channels"`
	Providers ProvidersConfig `json:"providers"`
	Modifiers ModifiersConfig `json:"modifiers"`
	Gateway   GatewayConfig   `json:"gateway"`
	Heartbeat HeartbeatConfig `json:"heartbeat"`
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Enabled     bool                `env:"NOMICLAW_CHANNELS_DISCORD_ENABLED"      json:"enabled"`
	Token       string              `env:"NOMICLAW_CHANNELS_DISCORD_TOKEN"        json:"token"`
	AllowFrom   FlexibleStringSlice `env:"NOMICLAW_CHANNELS_DISCORD_ALLOW_FROM"   json:"allow_from"`
	MentionOnly bool                `env:"NOMICLAW_CHANNELS_DISCORD_MENTION_ONLY" json:"mention_only"`
}

type ProvidersConfig struct {
	// Default selects the backend: "nomi" or "anthropic".
	Default   string          `env:"NOMICLAW_PROVIDERS_DEFAULT" json:"default"`
	Nomi      NomiConfig      `json:"nomi"`
	Anthropic AnthropicConfig `json:"anthropic"`
}

type NomiConfig struct {
	APIKey  string `env:"NOMICLAW_PROVIDERS_NOMI_API_KEY"  json:"api_key"`
	NomiID  string `env:"NOMICLAW_PROVIDERS_NOMI_NOMI_ID"  json:"nomi_id"`
	APIBase string `env:"NOMICLAW_PROVIDERS_NOMI_API_BASE" json:"api_base,omitempty"`
}

type AnthropicConfig struct {
	APIKey       string `env:"NOMICLAW_PROVIDERS_ANTHROPIC_API_KEY"       json:"api_key"`
	Model        string `env:"NOMICLAW_PROVIDERS_ANTHROPIC_MODEL"         json:"model,omitempty"`
	APIBase      string `env:"NOMICLAW_PROVIDERS_ANTHROPIC_API_BASE"      json:"api_base,omitempty"`
	SystemPrompt string `env:"NOMICLAW_PROVIDERS_ANTHROPIC_SYSTEM_PROMPT" json:"system_prompt,omitempty"`
}

// ModifiersConfig holds the message templates the pipeline substitutes.
// Every field has a default; after LoadConfig none of them is empty.
// Prefix templates recognize {author}, {channel} and {guild} placeholders;
// the trigger phrase contains exactly one {emoji} placeholder.
type ModifiersConfig struct {
	DefaultMessagePrefix string `env:"NOMICLAW_MODIFIERS_DEFAULT_MESSAGE_PREFIX" json:"default_message_prefix"`
	ChannelMessagePrefix string `env:"NOMICLAW_MODIFIERS_CHANNEL_MESSAGE_PREFIX" json:"channel_message_prefix"`
	DMMessagePrefix      string `env:"NOMICLAW_MODIFIERS_DM_MESSAGE_PREFIX"      json:"dm_message_prefix"`
	MessageSuffix        string `env:"NOMICLAW_MODIFIERS_MESSAGE_SUFFIX"         json:"message_suffix"`
	ReactTriggerPhrase   string `env:"NOMICLAW_MODIFIERS_REACT_TRIGGER_PHRASE"   json:"react_trigger_phrase"`
	MaxMessageLength     int    `env:"NOMICLAW_MODIFIERS_MAX_MESSAGE_LENGTH"     json:"max_message_length"`
}

type GatewayConfig struct {
	Host string `env:"NOMICLAW_GATEWAY_HOST" json:"host"`
	Port int    `env:"NOMICLAW_GATEWAY_PORT" json:"port"`
}

// HeartbeatConfig drives the hosting-platform keepalive. When ExternalURL
// is set, the gateway periodically fetches <external_url>/heartbeat so the
// host does not idle the service between chat events.
type HeartbeatConfig struct {
	Enabled     bool   `env:"NOMICLAW_HEARTBEAT_ENABLED"      json:"enabled"`
	Schedule    string `env:"NOMICLAW_HEARTBEAT_SCHEDULE"     json:"schedule"` // cron expression
	ExternalURL string `env:"NOMICLAW_HEARTBEAT_EXTERNAL_URL" json:"external_url,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Enabled:     false,
				MentionOnly: true,
			},
		},
		Providers: ProvidersConfig{
			Default: "nomi",
			Anthropic: AnthropicConfig{
				Model: "claude-sonnet-4.6",
			},
		},
		Modifiers: ModifiersConfig{
			DefaultMessagePrefix: "*You receive a message from @{author} on Discord* ",
			ChannelMessagePrefix: "*You receive a message from {author} in {channel} on {guild} on Discord* ",
			DMMessagePrefix:      "*You receive a DM from {author} on Discord* ",
			MessageSuffix:        "... (the message was cut off because it was too long)",
			ReactTriggerPhrase:   "I react with {emoji}",
			MaxMessageLength:     400,
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18791,
		},
		Heartbeat: HeartbeatConfig{
			Enabled:  false,
			Schedule: "*/14 * * * *",
		},
	}
}

// LoadConfig reads the JSON config at path, overlays NOMICLAW_* env vars
// and validates the result. A missing file is not an error; defaults plus
// env apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.normalizeModifiers()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate enforces the invariants the pipeline relies on. It runs once at
// load; past this point the config is read-only.
func (c *Config) Validate() error {
	if c.Modifiers.MaxMessageLength <= 0 {
		return errors.New("modifiers.max_message_length must be positive")
	}
	if c.Modifiers.MaxMessageLength > MaxMaxMessageLength {
		return ErrMessageLengthTooLarge
	}

	switch c.Providers.Default {
	case "nomi", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (want nomi or anthropic)", c.Providers.Default)
	}

	return nil
}

// normalizeModifiers strips outer quotation marks that hosting dashboards
// tend to add around env var values, and backfills any modifier the user
// blanked out. A modifier is never empty once loading completes.
func (c *Config) normalizeModifiers() {
	defaults := DefaultConfig().Modifiers

	m := &c.Modifiers
	m.DefaultMessagePrefix = stripOuterQuotes(m.DefaultMessagePrefix)
	m.ChannelMessagePrefix = stripOuterQuotes(m.ChannelMessagePrefix)
	m.DMMessagePrefix = stripOuterQuotes(m.DMMessagePrefix)
	m.MessageSuffix = stripOuterQuotes(m.MessageSuffix)
	m.ReactTriggerPhrase = stripOuterQuotes(m.ReactTriggerPhrase)

	if m.DefaultMessagePrefix == "" {
		m.DefaultMessagePrefix = defaults.DefaultMessagePrefix
	}
	if m.ChannelMessagePrefix == "" {
		m.ChannelMessagePrefix = defaults.ChannelMessagePrefix
	}
	if m.DMMessagePrefix == "" {
		m.DMMessagePrefix = defaults.DMMessagePrefix
	}
	if m.MessageSuffix == "" {
		m.MessageSuffix = defaults.MessageSuffix
	}
	if m.ReactTriggerPhrase == "" {
		m.ReactTriggerPhrase = defaults.ReactTriggerPhrase
	}
	if m.MaxMessageLength == 0 {
		m.MaxMessageLength = defaults.MaxMessageLength
	}
}

// quotePairs maps opening quotation marks to their closing counterpart.
var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'“':      '”',
	'‘':      '’',
	'«':      '»',
	'‹':      '›',
	'„':      '“',
	'‚':      '‘',
}

func stripOuterQuotes(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	if closing, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closing {
		return string(runes[1 : len(runes)-1])
	}
	return s
}
