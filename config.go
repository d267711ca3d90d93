package partyhistory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env           string         `mapstructure:"env"`            // current application environment (local, dev, production)
	Verbose       bool           `mapstructure:"verbose"`        // debug logging
	Provider      ProviderSource `mapstructure:"provider"`       // content provider section
	QuestionCount int            `mapstructure:"question_count"` // questions requested per quiz
	TimelineCount int            `mapstructure:"timeline_count"` // events requested per timeline
	JournalPath   string         `mapstructure:"journal_path"`   // SQLite acquisition journal, empty disables it
	TranscriptDir string         `mapstructure:"transcript_dir"` // provider transcripts, empty disables them
	HTTP          HTTP           `mapstructure:"http"`           // web server section
}

// ProviderSource selects and configures the content provider.
type ProviderSource struct {
	Name         string `mapstructure:"name"`     // gemini or openai
	Model        string `mapstructure:"model"`    // provider model, empty for the provider default
	BaseURL      string `mapstructure:"base_url"` // endpoint override
	GeminiAPIKey string `mapstructure:"-"`        // loaded from environment
	OpenAIAPIKey string `mapstructure:"-"`        // loaded from environment
}

// APIKey returns the key for the selected provider.
func (p ProviderSource) APIKey() string {
	if p.Name == ProviderOpenAI {
		return p.OpenAIAPIKey
	}
	return p.GeminiAPIKey
}

// HTTP contains web server parameters.
type HTTP struct {
	Addr          string        `mapstructure:"addr"`
	SessionSecret string        `mapstructure:"session_secret"`
	MaxViewers    int           `mapstructure:"max_viewers"`
	ViewerIdle    time.Duration `mapstructure:"viewer_idle"`
}

// LoadConfig reads configuration from ./config/config.yaml (optional), or
// from path when it is set, and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetDefault("env", "local")
	v.SetDefault("verbose", false)
	v.SetDefault("provider.name", ProviderGemini)
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("question_count", DefaultQuestionCount)
	v.SetDefault("timeline_count", DefaultTimelineCount)
	v.SetDefault("journal_path", "partyhistory.db")
	v.SetDefault("transcript_dir", "")
	v.SetDefault("http.addr", ":8180")
	v.SetDefault("http.session_secret", "")
	v.SetDefault("http.max_viewers", 1000)
	v.SetDefault("http.viewer_idle", "2h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("http.session_secret", "SESSION_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Provider.GeminiAPIKey = v.GetString("gemini_api_key")
	cfg.Provider.OpenAIAPIKey = v.GetString("openai_api_key")

	switch cfg.Provider.Name {
	case ProviderGemini, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider.Name)
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if cfg.TimelineCount <= 0 {
		cfg.TimelineCount = DefaultTimelineCount
	}

	return &cfg, nil
}

// ProviderConfig converts the loaded settings into a ProviderConfig.
func (c *Config) ProviderConfig() ProviderConfig {
	return ProviderConfig{
		Name:    c.Provider.Name,
		APIKey:  c.Provider.APIKey(),
		Model:   c.Provider.Model,
		BaseURL: c.Provider.BaseURL,
	}
}
