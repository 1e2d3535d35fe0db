package discord

import (
	"fmt"

	"blabber/internal/voice"

	"github.com/bwmarrin/discordgo"
)

// gatewayBackend adapts discordgo voice connections to the voice core seams.
type gatewayBackend struct {
	dg *discordgo.Session
}

func (b *gatewayBackend) Join(guildID, channelID string) (voice.Conn, error) {
	vc, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	return &gatewayConn{vc: vc}, nil
}

// gatewayConn is one live discordgo voice connection.
type gatewayConn struct {
	vc *discordgo.VoiceConnection
}

func (c *gatewayConn) ChannelID() string { return c.vc.ChannelID }

func (c *gatewayConn) Move(channelID string) error {
	return c.vc.ChangeChannel(channelID, false, true)
}

func (c *gatewayConn) Disconnect() error { return c.vc.Disconnect() }

func (c *gatewayConn) Speaking(on bool) error { return c.vc.Speaking(on) }

func (c *gatewayConn) Send() chan<- []byte { return c.vc.OpusSend }
