package voice

import (
	"fmt"

	"blabber/internal/core"
	"blabber/internal/profile"

	"github.com/bwmarrin/discordgo"
)

type VoiceCommand struct {
	Bot core.BotVoice
}

func (c *VoiceCommand) Name() string        { return "voice" }
func (c *VoiceCommand) Description() string { return "Pick the voice Blabber uses for you in this channel" }
func (c *VoiceCommand) Aliases() []string   { return []string{} }
func (c *VoiceCommand) Group() string       { return "voice" }
func (c *VoiceCommand) Category() string    { return "🔊 Voice" }
func (c *VoiceCommand) RequireAdmin() bool  { return false }
func (c *VoiceCommand) RequireDev() bool    { return false }

func (c *VoiceCommand) SlashDefinition() *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(profile.Voices))
	for _, alias := range profile.Aliases() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  alias,
			Value: alias,
		})
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "alias",
				Description: "Voice to use",
				Required:    true,
				Choices:     choices,
			},
		},
	}
}

func (c *VoiceCommand) Run(ctx interface{}) error {
	context, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := context.Session
	event := context.Event

	var alias string
	for _, opt := range event.ApplicationCommandData().Options {
		if opt.Name == "alias" {
			alias = opt.StringValue()
		}
	}

	if err := c.Bot.Profiles().Assign(event.Member.User.ID, event.ChannelID, alias); err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf(":x: **Unable to set voice**\n%s", err))
	}
	return core.RespondEphemeral(session, event, fmt.Sprintf("🗣️ **Voice set to** `%s`", alias))
}
