// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	voicecmd "blabber/internal/command/voice"
	"blabber/internal/config"
	"blabber/internal/core"
	"blabber/internal/discord"
	"blabber/internal/storage"
	"blabber/internal/tts"
	v "blabber/internal/version"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Info().Str("version", v.Version).Msgf("Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	pool := tts.NewPool(
		tts.NewOpenAISynthesizer(cfg.OpenAIToken),
		cfg.SynthRate,
		cfg.SynthBurst,
		cfg.SynthConcurrency,
	)

	bot, err := discord.NewBot(cfg, store, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord bot")
	}

	core.RegisterCommand(&voicecmd.ConnectCommand{Bot: bot},
		core.WithGuildOnly(),
		core.WithCommandLogger(),
	)
	core.RegisterCommand(&voicecmd.DisconnectCommand{Bot: bot},
		core.WithGuildOnly(),
		core.WithCommandLogger(),
	)
	core.RegisterCommand(&voicecmd.SayCommand{Bot: bot},
		core.WithGuildOnly(),
		core.WithCommandLogger(),
	)
	core.RegisterCommand(&voicecmd.VoiceCommand{Bot: bot},
		core.WithGuildOnly(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("Received signal, shutting down...")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}

	log.Info().Msg("Discord bot exited cleanly")
}
