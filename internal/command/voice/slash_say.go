package voice

import (
	"fmt"

	"blabber/internal/core"
	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
)

type SayCommand struct {
	Bot core.BotVoice
}

func (c *SayCommand) Name() string        { return "say" }
func (c *SayCommand) Description() string { return "Recite a message in your voice channel" }
func (c *SayCommand) Aliases() []string   { return []string{} }
func (c *SayCommand) Group() string       { return "voice" }
func (c *SayCommand) Category() string    { return "🔊 Voice" }
func (c *SayCommand) RequireAdmin() bool  { return false }
func (c *SayCommand) RequireDev() bool    { return false }

func (c *SayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Message to recite",
				Required:    true,
			},
		},
	}
}

func (c *SayCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := context.Session
	event := context.Event
	guildID := event.GuildID
	member := event.Member

	var message string
	for _, opt := range event.ApplicationCommandData().Options {
		if opt.Name == "message" {
			message = opt.StringValue()
		}
	}

	// Connecting may hit the network, so acknowledge first.
	if err := core.RespondDeferred(session, event); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	guild := c.Bot.VoiceGuild(guildID)
	if err := c.Bot.Dispatcher().Speak(guild, member.User.ID, event.ChannelID, message); err != nil {
		return core.FollowUp(session, event, sayErrorMessage(guild, err))
	}

	return core.FollowUp(session, event, fmt.Sprintf("📣 %s", message))
}

// sayErrorMessage translates a speech failure into the invoker-facing text,
// presenting connection problems as such rather than as synthesis failures.
func sayErrorMessage(guild *voice.Guild, err error) string {
	if voice.IsConnectError(err) {
		operation := "connect"
		if guild.State() != voice.StateAbsent {
			operation = "move"
		}
		return fmt.Sprintf(":x: **Unable to %s**\n%s", operation, err)
	}
	return fmt.Sprintf(":x: **Unable to convert to speech**\n%s", err)
}
