// /internal/config/config.go
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	OpenAIToken  string `env:"OPENAI_API_KEY,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DeveloperID  string `env:"DEVELOPER_ID"`

	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST"`

	// Speech pipeline knobs.
	SpeechQueueCap   int     `env:"SPEECH_QUEUE_CAP" envDefault:"10"`
	SpeechMaxLength  int     `env:"SPEECH_MAX_LENGTH" envDefault:"600"`
	SynthRate        float64 `env:"SYNTH_RATE" envDefault:"2"`
	SynthBurst       int     `env:"SYNTH_BURST" envDefault:"4"`
	SynthConcurrency int     `env:"SYNTH_CONCURRENCY" envDefault:"4"`
}

func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDeveloper reports whether a user ID matches the configured developer.
func IsDeveloper(cfg *Config, userID string) bool {
	return cfg.DeveloperID != "" && userID == cfg.DeveloperID
}
