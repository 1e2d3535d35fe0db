package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCommandHistoryRoundTrip(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	rec := CommandHistoryRecord{
		ChannelID:   "c1",
		ChannelName: "general",
		GuildName:   "test guild",
		UserID:      "u1",
		Username:    "someone",
		Command:     "say",
		Datetime:    time.Now(),
	}
	is.NoErr(s.AppendCommandToHistory("g1", rec))

	history, err := s.FetchCommandHistory("g1")
	is.NoErr(err)
	is.Equal(len(history), 1)
	is.Equal(history[0].Command, "say")
	is.Equal(history[0].Username, "someone")
}

func TestCommandHistoryAccumulates(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	is.NoErr(s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "connect"}))
	is.NoErr(s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "say"}))

	history, err := s.FetchCommandHistory("g1")
	is.NoErr(err)
	is.Equal(len(history), 2) // second write kept the first record
	is.Equal(history[0].Command, "connect")
	is.Equal(history[1].Command, "say")
}

func TestCommandHistoryIsPerGuild(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	is.NoErr(s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "connect"}))
	is.NoErr(s.AppendCommandToHistory("g2", CommandHistoryRecord{Command: "say"}))

	h1, err := s.FetchCommandHistory("g1")
	is.NoErr(err)
	h2, err := s.FetchCommandHistory("g2")
	is.NoErr(err)
	is.Equal(len(h1), 1)
	is.Equal(len(h2), 1)
	is.Equal(h1[0].Command, "connect")
	is.Equal(h2[0].Command, "say")
}

func TestCommandHistoryTrimsToLimit(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	for i := 0; i < commandHistoryLimit+5; i++ {
		is.NoErr(s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "say"}))
	}

	history, err := s.FetchCommandHistory("g1")
	is.NoErr(err)
	is.True(len(history) <= commandHistoryLimit+1) // trimmed on read before append
}

func TestFetchHistoryForUnknownGuild(t *testing.T) {
	is := is.New(t)

	s := newTestStorage(t)
	history, err := s.FetchCommandHistory("never-seen")
	is.NoErr(err)
	is.Equal(len(history), 0)
}
