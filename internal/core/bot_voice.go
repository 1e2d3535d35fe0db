// /internal/core/bot_voice.go
package core

import (
	"blabber/internal/profile"
	"blabber/internal/voice"
)

// BotVoice is the interface the Discord bot provides for voice commands.
type BotVoice interface {
	VoiceGuild(guildID string) *voice.Guild
	Coordinator() *voice.Coordinator
	Dispatcher() *voice.Dispatcher
	Profiles() *profile.Registry
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
}

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}
