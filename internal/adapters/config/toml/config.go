// Package toml loads engine settings from a TOML file and FISHBOWL_* env vars.
package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/domain"
)

const (
	configName    = "config"
	configType    = "toml"
	configDir     = ".config/fishbowl"
	configFile    = "config.toml"
	envPrefix     = "FISHBOWL"
	ConfigPathKey = "config.path"

	keyVersion              = "version"
	keyBotID                = "bot_id"
	keyMaxScrapLength       = "limits.max_scrap_length"
	keyMaxTotalScraps       = "limits.max_total_scraps"
	keyMaxPlayersPerSession = "limits.max_players_per_session"
	keyMaxSessions          = "limits.max_sessions"
	keyConfirmTimeout       = "timeouts.confirm"
	keySessionTimeout       = "timeouts.session"
	keySweepInterval        = "timeouts.sweep"
)

// DefaultPath is $HOME/.config/fishbowl/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFile), nil
}

// Load reads settings through cfg. A missing config file is not an error;
// every key falls back to its default and can be overridden from the
// environment, e.g. FISHBOWL_LIMITS_MAX_SESSIONS.
func Load(cfg *viper.Viper) (application.Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	defaults := toSchema(application.DefaultSettings())
	cfg.SetDefault(keyVersion, defaults.Version)
	cfg.SetDefault(keyBotID, defaults.BotID)
	cfg.SetDefault(keyMaxScrapLength, defaults.Limits.MaxScrapLength)
	cfg.SetDefault(keyMaxTotalScraps, defaults.Limits.MaxTotalScraps)
	cfg.SetDefault(keyMaxPlayersPerSession, defaults.Limits.MaxPlayersPerSession)
	cfg.SetDefault(keyMaxSessions, defaults.Limits.MaxSessions)
	cfg.SetDefault(keyConfirmTimeout, defaults.Timeouts.Confirm)
	cfg.SetDefault(keySessionTimeout, defaults.Timeouts.Session)
	cfg.SetDefault(keySweepInterval, defaults.Timeouts.Sweep)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetConfigType(configType)
	if path := cfg.GetString(ConfigPathKey); path != "" {
		cfg.SetConfigFile(path)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return application.Settings{}, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SetConfigName(configName)
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !errors.Is(err, os.ErrNotExist) {
			return application.Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := validateVersion(cfg.GetInt(keyVersion)); err != nil {
		return application.Settings{}, err
	}

	settings := application.Settings{
		MaxScrapLength:       cfg.GetInt(keyMaxScrapLength),
		MaxTotalScraps:       cfg.GetInt(keyMaxTotalScraps),
		MaxPlayersPerSession: cfg.GetInt(keyMaxPlayersPerSession),
		MaxSessions:          cfg.GetInt(keyMaxSessions),
		ConfirmTimeout:       cfg.GetDuration(keyConfirmTimeout),
		SessionTimeout:       cfg.GetDuration(keySessionTimeout),
		SweepInterval:        cfg.GetDuration(keySweepInterval),
		BotID:                domain.UserID(cfg.GetString(keyBotID)),
	}
	if err := settings.Validate(); err != nil {
		return application.Settings{}, err
	}

	return settings, nil
}

// Encode renders settings in the config file format.
func Encode(settings application.Settings) ([]byte, error) {
	data, err := toml.Marshal(toSchema(settings))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}
