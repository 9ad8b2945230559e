// Package settings loads runtime configuration from a config file,
// environment, and flags through viper.
package settings

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Settings struct {
	// Model service.
	APIKey  string `mapstructure:"api-key"`
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`

	// Prompt assembly.
	Persona       string `mapstructure:"persona"`
	HistoryWindow int    `mapstructure:"history-window"`

	// Rate-limit retry policy.
	RetryAttempts int           `mapstructure:"retry-attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry-backoff"`

	// Collaborators.
	StorePath     string `mapstructure:"store-path"`
	SMTPAddr      string `mapstructure:"smtp-addr"`
	SMTPFrom      string `mapstructure:"smtp-from"`
	SpeechEnabled bool   `mapstructure:"speech-enabled"`
	AudioDir      string `mapstructure:"audio-dir"`

	// HistoryFile, when set, is loaded on startup and saved on exit.
	HistoryFile string `mapstructure:"history-file"`
}

// Load reads settings from the given config file (optional), with VALET_*
// environment variables taking precedence over the file.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("VALET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("history-window", 12)
	v.SetDefault("retry-attempts", 3)
	v.SetDefault("retry-backoff", 2*time.Second)
	v.SetDefault("store-path", "valet.db")
	v.SetDefault("audio-dir", ".")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configFile)
		}
	}

	ret := &Settings{}
	if err := v.Unmarshal(ret); err != nil {
		return nil, errors.Wrap(err, "unmarshal settings")
	}
	return ret, nil
}
