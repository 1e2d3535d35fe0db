package discord

import (
	"fmt"
	"strings"

	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
)

// guildChecks implements voice.Checks and voice.Preconditions on top of the
// gateway state cache.
type guildChecks struct {
	dg               *discordgo.Session
	maxMessageLength int
}

// HasRequiredPermissions verifies the bot can connect and speak in a channel.
func (g *guildChecks) HasRequiredPermissions(guildID, channelID string) error {
	perms, err := g.dg.UserChannelPermissions(g.dg.State.User.ID, channelID)
	if err != nil {
		return fmt.Errorf("failed to resolve channel permissions: %w", err)
	}

	var missing []string
	if perms&discordgo.PermissionVoiceConnect == 0 {
		missing = append(missing, "Connect")
	}
	if perms&discordgo.PermissionVoiceSpeak == 0 {
		missing = append(missing, "Speak")
	}
	if len(missing) > 0 {
		return &voice.PermissionError{Missing: missing}
	}
	return nil
}

// CanDisconnect reports whether the invoker may pull the bot out of the
// channel it currently occupies: they share that channel, or they can move
// members.
func (g *guildChecks) CanDisconnect(guildID, userID string) error {
	botState, err := g.dg.State.VoiceState(guildID, g.dg.State.User.ID)
	if err != nil || botState == nil {
		return nil
	}

	userState, err := g.dg.State.VoiceState(guildID, userID)
	if err == nil && userState != nil && userState.ChannelID == botState.ChannelID {
		return nil
	}

	perms, err := g.dg.UserChannelPermissions(userID, botState.ChannelID)
	if err == nil && perms&discordgo.PermissionVoiceMoveMembers != 0 {
		return nil
	}
	return &voice.PermissionError{Missing: []string{"Move Members"}}
}

// InvokerChannel returns the voice channel the invoker currently occupies.
func (g *guildChecks) InvokerChannel(guildID, userID string) (string, error) {
	vs, err := g.dg.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", voice.ErrInvokerNotInVoice
	}
	return vs.ChannelID, nil
}

// ValidateMessage applies content policy to the text to recite.
func (g *guildChecks) ValidateMessage(message string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return &voice.ValidationError{Reason: "message is empty"}
	}
	if g.maxMessageLength > 0 && len([]rune(trimmed)) > g.maxMessageLength {
		return &voice.ValidationError{
			Reason: fmt.Sprintf("message is too long (%d characters, max %d)", len([]rune(trimmed)), g.maxMessageLength),
		}
	}
	return nil
}
