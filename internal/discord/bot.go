package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"blabber/internal/config"
	"blabber/internal/core"
	"blabber/internal/profile"
	"blabber/internal/storage"
	"blabber/internal/tts"
	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Bot is the Discord front end: it owns the gateway session and the per-guild
// voice coordination stack.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage

	sessions *voice.Registry
	coord    *voice.Coordinator
	disp     *voice.Dispatcher
	profiles *profile.Registry
}

// NewBot wires the voice stack around a fresh gateway session. The pool is the
// shared synthesis resource all guilds draw from.
func NewBot(cfg *config.Config, store *storage.Storage, pool tts.Synthesizer) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:       dg,
		cfg:      cfg,
		storage:  store,
		sessions: voice.NewRegistry(),
		profiles: profile.NewRegistry(),
	}

	checks := &guildChecks{dg: dg, maxMessageLength: cfg.SpeechMaxLength}
	b.coord = voice.NewCoordinator(&gatewayBackend{dg: dg}, checks)
	b.disp = voice.NewDispatcher(b.coord, checks, b.profiles, pool, cfg.SpeechQueueCap)
	return b, nil
}

// VoiceGuild returns the voice coordination scope for a guild.
func (b *Bot) VoiceGuild(guildID string) *voice.Guild { return b.sessions.Guild(guildID) }

func (b *Bot) Coordinator() *voice.Coordinator { return b.coord }
func (b *Bot) Dispatcher() *voice.Dispatcher   { return b.disp }
func (b *Bot) Profiles() *profile.Registry     { return b.profiles }

// FindUserVoiceState locates the voice channel a user currently occupies.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*core.VoiceState, error) {
	vs, err := b.dg.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return nil, voice.ErrInvokerNotInVoice
	}
	return &core.VoiceState{ChannelID: vs.ChannelID, UserID: userID}, nil
}

// Run opens the gateway session and blocks until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.configureIntents()
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onGuildCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received. Cleaning up...")
	b.disconnectAll()
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages
}

// disconnectAll drops every live voice session so shutdown never strands a
// half-open connection.
func (b *Bot) disconnectAll() {
	for _, g := range b.sessions.All() {
		if g.State() == voice.StateAbsent {
			continue
		}
		if err := b.coord.ForceDisconnect(g); err != nil {
			log.Warn().Err(err).Str("guild", g.ID()).Msg("Failed to drop voice session")
		}
	}
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Warn().Err(err).Msg("Error retrieving bot user")
		return
	}

	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			log.Info().Str("guild", g.ID).Msg("Leaving blacklisted guild")
			if err := s.GuildLeave(g.ID); err != nil {
				log.Error().Err(err).Str("guild", g.ID).Msg("Failed to leave guild")
			}
			continue
		}

		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				log.Error().Err(err).Str("guild", g.ID).Msg("Error registering slash commands")
			}
		} else {
			log.Info().Msg("Registering slash commands skipped")
		}
	}

	log.Info().Str("bot", botInfo.Username).Msg("Discord bot is running")
}

// onGuildCreate is called when the bot joins a guild
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("Bot added to guild")

	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Info().Str("guild", g.Guild.ID).Msg("Leaving blacklisted guild")
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Error().Err(err).Str("guild", g.Guild.ID).Msg("Failed to leave guild")
		}
		return
	}

	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Error().Err(err).Str("guild", g.Guild.ID).Msg("Failed to register commands for new guild")
	}
}

// onInteractionCreate dispatches slash commands to the registry
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd, ok := core.GetCommand(cmdName)
	if !ok {
		log.Warn().Str("command", cmdName).Msg("Unknown command")
		return
	}

	if cmd.RequireDev() && (i.Member == nil || !config.IsDeveloper(b.cfg, i.Member.User.ID)) {
		_ = core.RespondEphemeral(s, i, ":x: This command is restricted")
		return
	}

	ctx := &core.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Error().Err(err).Str("command", cmdName).Msg("Error running slash command")
		_ = core.RespondEphemeral(s, i, fmt.Sprintf(":x: Error running command: %v", err))
	}
}

// registerCommands registers slash commands, skipping unchanged definitions
// via the local hash cache.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	cached := loadCommandDigests(guildID)

	var wanted []*discordgo.ApplicationCommand
	digests := make(map[string]string)
	for _, cmd := range core.AllCommands() {
		if def := normalizeDefinition(cmd); def != nil {
			wanted = append(wanted, def)
			digests[def.Name] = commandFingerprint(def)
		}
	}

	// Delete obsolete
	for _, old := range existing {
		if _, ok := digests[old.Name]; !ok {
			log.Info().Str("guild", guildID).Str("command", old.Name).Msg("Deleting obsolete command")
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Error().Err(err).Str("guild", guildID).Str("command", old.Name).Msg("Failed to delete command")
			}
			delete(cached, old.Name)
		}
	}

	// Create or update changed commands
	var changed []*discordgo.ApplicationCommand
	for _, cmd := range wanted {
		if cached[cmd.Name] != digests[cmd.Name] {
			changed = append(changed, cmd)
		}
	}

	if len(changed) > 0 {
		log.Info().Str("guild", guildID).Int("count", len(changed)).Msg("Commands changed, updating with rate limit")
		registerCommandsWithRateLimit(b, guildID, changed)
		for _, c := range changed {
			cached[c.Name] = digests[c.Name]
		}
	}

	saveCommandDigests(guildID, cached)
	return nil
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

// normalizeDefinition normalizes a command definition
func normalizeDefinition(cmd core.Command) *discordgo.ApplicationCommand {
	if slash, ok := cmd.(core.SlashProvider); ok {
		if def := slash.SlashDefinition(); def != nil {
			if def.Type == 0 {
				def.Type = discordgo.ChatApplicationCommand
			}
			return def
		}
	}
	return nil
}

// registerCommandsWithRateLimit registers commands with a rate limit
func registerCommandsWithRateLimit(b *Bot, guildID string, cmds []*discordgo.ApplicationCommand) {
	rateLimit := time.Second / 40
	ticker := time.NewTicker(rateLimit)
	defer ticker.Stop()

	var wg sync.WaitGroup

	for _, job := range cmds {
		wg.Add(1)

		go func(cmd *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			_, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, guildID, cmd)
			if err != nil {
				log.Error().Err(err).Str("command", cmd.Name).Msg("Can't create command")
			} else {
				log.Info().Str("command", cmd.Name).Msg("Command created")
			}
		}(job)
	}

	wg.Wait()
}
