package voice

import (
	"fmt"

	"blabber/internal/core"
	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
)

type ConnectCommand struct {
	Bot core.BotVoice
}

func (c *ConnectCommand) Name() string        { return "connect" }
func (c *ConnectCommand) Description() string { return "Summon Blabber to your voice channel" }
func (c *ConnectCommand) Aliases() []string   { return []string{} }
func (c *ConnectCommand) Group() string       { return "voice" }
func (c *ConnectCommand) Category() string    { return "🔊 Voice" }
func (c *ConnectCommand) RequireAdmin() bool  { return false }
func (c *ConnectCommand) RequireDev() bool    { return false }

func (c *ConnectCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ConnectCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := context.Session
	event := context.Event
	guildID := event.GuildID
	member := event.Member

	invoker, err := c.Bot.FindUserVoiceState(guildID, member.User.ID)
	if err != nil {
		return core.RespondEphemeral(session, event, "ℹ️ **You must be in a voice channel to use this command**")
	}

	guild := c.Bot.VoiceGuild(guildID)

	// Pick the operation name before the attempt, for the failure message.
	operation := "connect"
	if guild.State() != voice.StateAbsent {
		operation = "move"
	}

	result, err := c.Bot.Coordinator().ConnectOrMove(guild, member.User.ID, invoker.ChannelID)
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf(":x: **Unable to %s**\n%s", operation, err))
	}

	if result == voice.ResultAlreadyPresent {
		return core.RespondEphemeral(session, event, "ℹ️ **Blabber is already in this voice channel**")
	}
	return core.Respond(session, event, fmt.Sprintf("✅ **%s to** `%s`", result, core.ChannelName(session, invoker.ChannelID)))
}
