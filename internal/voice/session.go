// Package voice owns the per-guild voice session lifecycle: connecting and
// moving the bot between channels and routing speech requests into the active
// audio stream.
package voice

import (
	"sync"

	"blabber/internal/tts"
)

// State of one guild's voice presence.
type State int

const (
	StateAbsent State = iota
	StateConnectedIdle
	StateConnectedPlaying
)

// Backend establishes voice connections with the chat platform.
type Backend interface {
	Join(guildID, channelID string) (Conn, error)
}

// Conn is one live voice connection.
type Conn interface {
	ChannelID() string
	Move(channelID string) error
	Disconnect() error
	Speaking(on bool) error
	Send() chan<- []byte
}

// Registry hands out the per-guild coordination scope. Each guild gets its own
// lock and session slot; guilds share nothing.
type Registry struct {
	mu     sync.Mutex
	guilds map[string]*Guild
}

func NewRegistry() *Registry {
	return &Registry{guilds: make(map[string]*Guild)}
}

// Guild returns the guild's scope, creating it on first use.
func (r *Registry) Guild(guildID string) *Guild {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.guilds[guildID]
	if !ok {
		g = &Guild{id: guildID}
		r.guilds[guildID] = g
	}
	return g
}

// All returns every guild scope created so far.
func (r *Registry) All() []*Guild {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Guild, 0, len(r.guilds))
	for _, g := range r.guilds {
		out = append(out, g)
	}
	return out
}

// Guild serializes every session transition for one guild. The mutex is held
// for the full duration of a coordinator or dispatcher operation, so
// overlapping invocations never observe a half-transitioned session.
type Guild struct {
	mu      sync.Mutex
	id      string
	session *Session
}

func (g *Guild) ID() string { return g.id }

// State reports the guild's current lifecycle state.
func (g *Guild) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.session == nil:
		return StateAbsent
	case g.session.playing():
		return StateConnectedPlaying
	default:
		return StateConnectedIdle
	}
}

// ChannelID returns the connected channel, or "" when absent.
func (g *Guild) ChannelID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return ""
	}
	return g.session.channelID
}

// Session is the bot's live connection to one voice channel. All mutation
// happens under the owning guild's lock; only the playback loop runs outside
// it.
type Session struct {
	conn      Conn
	channelID string
	player    *player
}

// playing reports whether a playback loop is still draining a source.
func (s *Session) playing() bool {
	if s.player == nil {
		return false
	}
	select {
	case <-s.player.done:
		return false
	default:
		return true
	}
}

// play starts a playback loop bound to the source. A finished predecessor is
// joined first so two loops never feed the connection at once.
func (s *Session) play(src *tts.Source) {
	if s.player != nil {
		<-s.player.done
	}
	p := &player{
		conn:   s.conn,
		source: src,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.player = p
	go p.run()
}

// stopPlayback retires the active source and joins the playback loop. Pending
// and in-flight audio are dropped.
func (s *Session) stopPlayback() {
	if s.player == nil {
		return
	}
	s.player.source.Close()
	close(s.player.stop)
	<-s.player.done
	s.player = nil
}

// close tears the session down deterministically: playback resources first,
// then the connection.
func (s *Session) close() error {
	s.stopPlayback()
	return s.conn.Disconnect()
}
