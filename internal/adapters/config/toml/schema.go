package toml

import (
	"fmt"

	"github.com/bnema/fishbowl/internal/application"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	BotID    string         `toml:"bot_id"`
	Limits   limitsSchema   `toml:"limits"`
	Timeouts timeoutsSchema `toml:"timeouts"`
}

type limitsSchema struct {
	MaxScrapLength       int `toml:"max_scrap_length"`
	MaxTotalScraps       int `toml:"max_total_scraps"`
	MaxPlayersPerSession int `toml:"max_players_per_session"`
	MaxSessions          int `toml:"max_sessions"`
}

// Durations are stored as Go duration strings ("10s", "1h0m0s").
type timeoutsSchema struct {
	Confirm string `toml:"confirm"`
	Session string `toml:"session"`
	Sweep   string `toml:"sweep"`
}

func validateVersion(version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}

	return nil
}

func toSchema(settings application.Settings) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		BotID:   string(settings.BotID),
		Limits: limitsSchema{
			MaxScrapLength:       settings.MaxScrapLength,
			MaxTotalScraps:       settings.MaxTotalScraps,
			MaxPlayersPerSession: settings.MaxPlayersPerSession,
			MaxSessions:          settings.MaxSessions,
		},
		Timeouts: timeoutsSchema{
			Confirm: settings.ConfirmTimeout.String(),
			Session: settings.SessionTimeout.String(),
			Sweep:   settings.SweepInterval.String(),
		},
	}
}
