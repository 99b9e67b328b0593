package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/fishbowl/internal/domain"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds every tunable of the engine.
type Settings struct {
	MaxScrapLength       int
	MaxTotalScraps       int
	MaxPlayersPerSession int
	MaxSessions          int
	ConfirmTimeout       time.Duration
	SessionTimeout       time.Duration
	SweepInterval        time.Duration
	BotID                domain.UserID
}

func DefaultSettings() Settings {
	limits := domain.DefaultLimits()
	return Settings{
		MaxScrapLength:       limits.MaxScrapLength,
		MaxTotalScraps:       limits.MaxTotalScraps,
		MaxPlayersPerSession: limits.MaxPlayers,
		MaxSessions:          100,
		ConfirmTimeout:       10 * time.Second,
		SessionTimeout:       time.Hour,
		SweepInterval:        time.Minute,
		BotID:                "fishbowl",
	}
}

func (s Settings) Limits() domain.Limits {
	return domain.Limits{
		MaxScrapLength: s.MaxScrapLength,
		MaxTotalScraps: s.MaxTotalScraps,
		MaxPlayers:     s.MaxPlayersPerSession,
	}
}

func (s Settings) Validate() error {
	ints := []struct {
		name  string
		value int
	}{
		{"max_scrap_length", s.MaxScrapLength},
		{"max_total_scraps", s.MaxTotalScraps},
		{"max_players_per_session", s.MaxPlayersPerSession},
		{"max_sessions", s.MaxSessions},
	}
	for _, field := range ints {
		if field.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSettings, field.name, field.value)
		}
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"confirm_timeout", s.ConfirmTimeout},
		{"session_timeout", s.SessionTimeout},
		{"sweep_interval", s.SweepInterval},
	}
	for _, field := range durations {
		if field.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidSettings, field.name, field.value)
		}
	}
	return nil
}
