// Package config loads quizbot settings from defaults, an optional YAML
// file, an optional .env file, the environment and bound flags, in
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/quizbot/internal/llm"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID string `mapstructure:"chat_id"`
	Debug  bool   `mapstructure:"debug"`
}

type LLMConfig struct {
	Provider         string        `mapstructure:"provider" validate:"oneof=openai anthropic gemini openrouter mock"`
	Model            string        `mapstructure:"model"`
	BaseURL          string        `mapstructure:"base_url" validate:"omitempty,url"`
	OpenAIAPIKey     string        `mapstructure:"openai_api_key"`
	AnthropicAPIKey  string        `mapstructure:"anthropic_api_key"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"`
	OpenRouterAPIKey string        `mapstructure:"openrouter_api_key"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type ScheduleConfig struct {
	Interval   time.Duration `mapstructure:"interval" validate:"gte=1s"`
	FirstDelay time.Duration `mapstructure:"first_delay" validate:"gte=0"`
}

type StoreConfig struct {
	// Path is the SQLite file. Empty means the default data path.
	Path     string `mapstructure:"path"`
	Disabled bool   `mapstructure:"disabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// binding ties a config key to its environment variable.
type binding struct {
	key string
	env string
}

var bindings = []binding{
	{"telegram.token", "TOKEN"},
	{"telegram.chat_id", "CHAT_ID"},
	{"telegram.debug", "QUIZBOT_TELEGRAM_DEBUG"},
	{"llm.provider", "QUIZBOT_LLM_PROVIDER"},
	{"llm.model", "QUIZBOT_LLM_MODEL"},
	{"llm.base_url", "QUIZBOT_LLM_BASE_URL"},
	{"llm.openai_api_key", "OPENAI_API_KEY"},
	{"llm.anthropic_api_key", "ANTHROPIC_API_KEY"},
	{"llm.gemini_api_key", "GEMINI_API_KEY"},
	{"llm.openrouter_api_key", "OPENROUTER_API_KEY"},
	{"llm.timeout", "QUIZBOT_REQUEST_TIMEOUT"},
	{"schedule.interval", "QUIZBOT_INTERVAL"},
	{"schedule.first_delay", "QUIZBOT_FIRST_DELAY"},
	{"store.path", "QUIZBOT_DB"},
	{"store.disabled", "QUIZBOT_NO_DB"},
	{"log.level", "QUIZBOT_LOG_LEVEL"},
	{"log.format", "QUIZBOT_LOG_FORMAT"},
}

// apiKeyEnv names the API key variable each provider needs.
var apiKeyEnv = map[string]string{
	llm.ProviderOpenAI:     "OPENAI_API_KEY",
	llm.ProviderAnthropic:  "ANTHROPIC_API_KEY",
	llm.ProviderGemini:     "GEMINI_API_KEY",
	llm.ProviderOpenRouter: "OPENROUTER_API_KEY",
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
	envFile    string
	lookupEnv  func(string) (string, bool)

	skipTelegram bool
	skipLLM      bool
}

// LoaderOption configures a ConfigLoader.
type LoaderOption func(*ConfigLoader)

// WithEnvFile reads dotenv values from path instead of ./.env. An empty
// path disables dotenv loading.
func WithEnvFile(path string) LoaderOption {
	return func(l *ConfigLoader) { l.envFile = path }
}

// WithoutTelegram drops TOKEN and CHAT_ID from the required settings, for
// commands that never post.
func WithoutTelegram() LoaderOption {
	return func(l *ConfigLoader) { l.skipTelegram = true }
}

// WithoutLLM drops the provider API key from the required settings, for
// commands that only read the local database.
func WithoutLLM() LoaderOption {
	return func(l *ConfigLoader) { l.skipLLM = true }
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) LoaderOption {
	return func(l *ConfigLoader) { l.lookupEnv = fn }
}

// NewConfigLoader creates a loader. configFile is an optional YAML file;
// when empty, ./quizbot.yaml and $HOME/.config/quizbot/quizbot.yaml are
// tried.
func NewConfigLoader(configFile string, opts ...LoaderOption) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("quizbot")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/quizbot")
	}

	loader := &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
		envFile:    ".env",
		lookupEnv:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader, nil
}

// BindFlag lets a command-line flag override key when it was set.
func (loader *ConfigLoader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return loader.viper.BindPFlag(key, flag)
}

// Load resolves the configuration. Required settings that are missing
// produce a *MissingConfigError naming every one of them.
func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	def := llm.DefaultConfig()
	v.SetDefault("llm.provider", def.Provider)
	v.SetDefault("llm.timeout", def.Timeout)
	v.SetDefault("schedule.interval", 2*time.Hour)
	v.SetDefault("schedule.first_delay", 10*time.Second)
	v.SetDefault("store.disabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	if err := loader.applyEnvFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	if err := cfg.checkRequired(!loader.skipTelegram, !loader.skipLLM); err != nil {
		return nil, err
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// applyEnvFile merges dotenv values into the config layer, over the YAML
// file. Bound environment variables and flags still take precedence.
func (loader *ConfigLoader) applyEnvFile() error {
	if loader.envFile == "" {
		return nil
	}
	if _, err := os.Stat(loader.envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	dv := viper.New()
	dv.SetConfigFile(loader.envFile)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", loader.envFile, err)
	}

	values := map[string]any{}
	for _, b := range bindings {
		if _, ok := loader.lookupEnv(b.env); ok {
			continue
		}
		// Dotenv keys are lowercased by viper.
		envKey := strings.ToLower(b.env)
		if dv.IsSet(envKey) {
			setNested(values, b.key, dv.GetString(envKey))
		}
	}
	if len(values) == 0 {
		return nil
	}
	if err := loader.viper.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge %s: %w", loader.envFile, err)
	}
	return nil
}

// setNested stores val under a dotted key such as "store.path".
func setNested(m map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = val
}

// checkRequired reports every missing required setting at once.
func (c *Config) checkRequired(telegram, llmKey bool) error {
	var missing []string
	if telegram && strings.TrimSpace(c.Telegram.Token) == "" {
		missing = append(missing, "TOKEN")
	}
	if telegram && strings.TrimSpace(c.Telegram.ChatID) == "" {
		missing = append(missing, "CHAT_ID")
	}
	if env, ok := apiKeyEnv[c.LLM.Provider]; ok && llmKey && strings.TrimSpace(c.apiKey()) == "" {
		missing = append(missing, env)
	}
	if len(missing) > 0 {
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

func (c *Config) apiKey() string {
	switch c.LLM.Provider {
	case llm.ProviderAnthropic:
		return c.LLM.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.LLM.GeminiAPIKey
	case llm.ProviderOpenRouter:
		return c.LLM.OpenRouterAPIKey
	default:
		return c.LLM.OpenAIAPIKey
	}
}

// LLMConfig converts the settings into a provider configuration.
func (c *Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	lc.Provider = c.LLM.Provider
	lc.Timeout = c.LLM.Timeout
	lc.SetAPIKey(c.apiKey())
	lc.SetModel(c.LLM.Model)
	if c.LLM.BaseURL != "" {
		switch c.LLM.Provider {
		case llm.ProviderOpenRouter:
			lc.OpenRouter.BaseURL = c.LLM.BaseURL
		case llm.ProviderOpenAI:
			lc.OpenAI.BaseURL = c.LLM.BaseURL
		}
	}
	return lc
}
