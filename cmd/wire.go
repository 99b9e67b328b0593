package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/viper"

	tomlconfig "github.com/bnema/fishbowl/internal/adapters/config/toml"
	"github.com/bnema/fishbowl/internal/adapters/messenger/console"
	"github.com/bnema/fishbowl/internal/adapters/render/text"
	"github.com/bnema/fishbowl/internal/application"
	"github.com/bnema/fishbowl/internal/ports"
	"github.com/bnema/fishbowl/internal/random"
)

type app struct {
	service   *application.Service
	messenger *console.Messenger
	renderer  *text.Renderer
	logger    *log.Logger
}

func loadSettings(configPath string) (application.Settings, error) {
	cfg := viper.New()
	if configPath != "" {
		cfg.Set(tomlconfig.ConfigPathKey, configPath)
	}

	settings, err := tomlconfig.Load(cfg)
	if err != nil {
		return application.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// wireApp builds the game around a console messenger writing to out. A zero
// seed draws one from crypto/rand.
func wireApp(settings application.Settings, out, logOut io.Writer, seed uint64) (*app, error) {
	var rng *random.Source
	if seed == 0 {
		seeded, err := random.NewSeededSource()
		if err != nil {
			return nil, fmt.Errorf("wire random source: %w", err)
		}
		rng = seeded
	} else {
		rng = random.NewSource(seed)
	}

	renderer, err := text.NewRenderer(settings.Limits())
	if err != nil {
		return nil, fmt.Errorf("wire renderer: %w", err)
	}
	messenger := console.New(out, renderer.Notice)
	logger := log.New(logOut, "fb: ", log.LstdFlags)

	return &app{
		service:   application.NewService(settings, messenger, ports.SystemClock{}, rng, logger),
		messenger: messenger,
		renderer:  renderer,
		logger:    logger,
	}, nil
}
