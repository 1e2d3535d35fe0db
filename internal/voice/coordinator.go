package voice

import "fmt"

// Result of a connect-or-move request.
type Result string

const (
	ResultConnected      Result = "Connected"
	ResultMoved          Result = "Moved"
	ResultAlreadyPresent Result = "Already Present"
)

// Checks are the permission gates injected by the platform adapter.
type Checks interface {
	// CanDisconnect reports whether the invoker may force the bot out of the
	// channel it currently occupies.
	CanDisconnect(guildID, userID string) error
	// HasRequiredPermissions reports whether the bot can connect and speak in
	// the target channel.
	HasRequiredPermissions(guildID, channelID string) error
}

// Coordinator decides connect vs. move vs. no-op for guild voice sessions and
// owns their teardown.
type Coordinator struct {
	backend Backend
	checks  Checks
}

func NewCoordinator(backend Backend, checks Checks) *Coordinator {
	return &Coordinator{backend: backend, checks: checks}
}

// ConnectOrMove puts the guild's session into the target channel. Permission
// and state preconditions are verified before anything is mutated; on failure
// the session keeps its pre-operation value.
func (c *Coordinator) ConnectOrMove(g *Guild, userID, targetChannelID string) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return c.connectOrMove(g, userID, targetChannelID)
}

// connectOrMove implements the transition. The caller holds g.mu.
func (c *Coordinator) connectOrMove(g *Guild, userID, targetChannelID string) (Result, error) {
	if g.session == nil {
		if err := c.checks.HasRequiredPermissions(g.id, targetChannelID); err != nil {
			return "", err
		}
		conn, err := c.backend.Join(g.id, targetChannelID)
		if err != nil {
			return "", &ConnectFailure{Op: "connect", Err: err}
		}
		g.session = &Session{conn: conn, channelID: targetChannelID}
		return ResultConnected, nil
	}

	if g.session.channelID == targetChannelID {
		return ResultAlreadyPresent, nil
	}

	if err := c.checks.CanDisconnect(g.id, userID); err != nil {
		return "", err
	}
	if err := c.checks.HasRequiredPermissions(g.id, targetChannelID); err != nil {
		return "", err
	}

	// Stale audio must not follow the session into the new channel.
	g.session.stopPlayback()

	if err := g.session.conn.Move(targetChannelID); err != nil {
		return "", &ConnectFailure{Op: "move", Err: err}
	}
	g.session.channelID = targetChannelID
	return ResultMoved, nil
}

// ForceDisconnect tears the session down without invoker checks. Used on
// shutdown.
func (c *Coordinator) ForceDisconnect(g *Guild) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return nil
	}
	err := g.session.close()
	g.session = nil
	return err
}

// Disconnect tears down the guild's session and releases its playback
// resources. The session record is removed even when the transport disconnect
// reports an error; owned resources are already released by then.
func (c *Coordinator) Disconnect(g *Guild, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return ErrNotConnected
	}
	if err := c.checks.CanDisconnect(g.id, userID); err != nil {
		return err
	}

	err := g.session.close()
	g.session = nil
	if err != nil {
		return fmt.Errorf("unable to disconnect cleanly: %w", err)
	}
	return nil
}
