package voice

import (
	"errors"

	"blabber/internal/profile"
	"blabber/internal/tts"
)

// Preconditions are the request gates injected by the platform adapter.
type Preconditions interface {
	// InvokerChannel returns the voice channel the invoker currently occupies,
	// or ErrInvokerNotInVoice.
	InvokerChannel(guildID, userID string) (string, error)
	// ValidateMessage applies content policy to the text to recite.
	ValidateMessage(message string) error
}

// ProfileResolver resolves the voice parameters for an invoker/channel pair.
type ProfileResolver interface {
	Resolve(userID, channelID string) profile.Profile
}

// Dispatcher routes validated speech requests into a guild's audio stream,
// connecting or moving the session first when needed.
type Dispatcher struct {
	coord    *Coordinator
	pre      Preconditions
	profiles ProfileResolver
	pool     tts.Synthesizer
	queueCap int
}

func NewDispatcher(coord *Coordinator, pre Preconditions, profiles ProfileResolver, pool tts.Synthesizer, queueCap int) *Dispatcher {
	return &Dispatcher{
		coord:    coord,
		pre:      pre,
		profiles: profiles,
		pool:     pool,
		queueCap: queueCap,
	}
}

// Speak validates the request, ensures a connection to the invoker's channel,
// enqueues the message and starts playback when idle. The guild lock is held
// for the whole operation, so two concurrent says can never both decide "no
// source exists", and a say can never interleave with a move or disconnect.
func (d *Dispatcher) Speak(g *Guild, userID, textChannelID, message string) error {
	channelID, err := d.pre.InvokerChannel(g.id, userID)
	if err != nil {
		return err
	}
	if err := d.pre.ValidateMessage(message); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil || g.session.channelID != channelID {
		if _, err := d.coord.connectOrMove(g, userID, channelID); err != nil {
			return err
		}
	}

	req := tts.NewRequest(message, d.profiles.Resolve(userID, textChannelID))

	// Reuse the active player's source. A source that drained and closed
	// between our check and the submit is indistinguishable from an idle
	// session; fall through to a fresh one.
	if g.session.playing() {
		err := g.session.player.source.Submit(req)
		if err == nil {
			return nil
		}
		if !errors.Is(err, tts.ErrSourceClosed) {
			return err
		}
	}

	src := tts.NewSource(d.pool, d.queueCap)
	if err := src.Submit(req); err != nil {
		return err
	}
	g.session.play(src)
	return nil
}
