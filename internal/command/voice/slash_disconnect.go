package voice

import (
	"errors"
	"fmt"

	"blabber/internal/core"
	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
)

type DisconnectCommand struct {
	Bot core.BotVoice
}

func (c *DisconnectCommand) Name() string        { return "disconnect" }
func (c *DisconnectCommand) Description() string { return "Disconnect Blabber from its voice channel" }
func (c *DisconnectCommand) Aliases() []string   { return []string{} }
func (c *DisconnectCommand) Group() string       { return "voice" }
func (c *DisconnectCommand) Category() string    { return "🔊 Voice" }
func (c *DisconnectCommand) RequireAdmin() bool  { return false }
func (c *DisconnectCommand) RequireDev() bool    { return false }

func (c *DisconnectCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *DisconnectCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := context.Session
	event := context.Event
	guild := c.Bot.VoiceGuild(event.GuildID)

	err := c.Bot.Coordinator().Disconnect(guild, event.Member.User.ID)
	if errors.Is(err, voice.ErrNotConnected) {
		return core.RespondEphemeral(session, event, "ℹ️ **Blabber is not connected to any voice channel**")
	}
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf(":x: **Unable to disconnect**\n%s", err))
	}
	return core.Respond(session, event, "✅ **Successfully disconnected**")
}
