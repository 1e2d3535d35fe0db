package voice

import (
	"errors"
	"sync"
	"testing"

	"blabber/internal/tts"

	"github.com/matryer/is"
)

func newSpeakStack(synth tts.Synthesizer, queueCap int) (*Registry, *Dispatcher, *fakeBackend, *fakePre, *fakeChecks) {
	backend := &fakeBackend{}
	checks := &fakeChecks{}
	pre := &fakePre{channels: map[string]string{"user": "chan-a"}}
	coord := NewCoordinator(backend, checks)
	disp := NewDispatcher(coord, pre, fakeProfiles{}, synth, queueCap)
	return NewRegistry(), disp, backend, pre, checks
}

func TestSpeakConnectsAndPlays(t *testing.T) {
	is := is.New(t)

	synth := &fakeSynth{}
	reg, disp, backend, _, _ := newSpeakStack(synth, 5)
	g := reg.Guild("g1")

	is.NoErr(disp.Speak(g, "user", "text-chan", "hello"))
	is.Equal(backend.joinCount(), 1) // connected on demand
	is.Equal(g.ChannelID(), "chan-a")

	waitFor(t, func() bool { return len(synth.texts()) == 1 })
	is.Equal(synth.texts()[0], "hello")
	waitFor(t, func() bool { return g.State() == StateConnectedIdle }) // drained
}

func TestSpeakRequiresVoicePresence(t *testing.T) {
	is := is.New(t)

	synth := &fakeSynth{}
	reg, disp, backend, pre, _ := newSpeakStack(synth, 5)
	pre.setChannel("user", "")
	g := reg.Guild("g1")

	err := disp.Speak(g, "user", "text-chan", "hello")
	is.True(errors.Is(err, ErrInvokerNotInVoice))
	is.Equal(g.State(), StateAbsent)
	is.Equal(backend.joinCount(), 0)
}

func TestSpeakRejectsInvalidMessage(t *testing.T) {
	is := is.New(t)

	synth := &fakeSynth{}
	reg, disp, backend, pre, _ := newSpeakStack(synth, 5)
	pre.validate = &ValidationError{Reason: "message is empty"}
	g := reg.Guild("g1")

	err := disp.Speak(g, "user", "text-chan", "")
	var ve *ValidationError
	is.True(errors.As(err, &ve))
	is.Equal(backend.joinCount(), 0) // no connection attempted for a bad request
}

func TestSpeakFIFOWhilePlaying(t *testing.T) {
	is := is.New(t)

	gate := make(chan struct{})
	synth := &fakeSynth{gate: gate}
	reg, disp, backend, _, _ := newSpeakStack(synth, 5)
	g := reg.Guild("g1")

	is.NoErr(disp.Speak(g, "user", "text-chan", "one"))
	waitFor(t, func() bool { return len(synth.texts()) == 1 }) // first request in flight

	is.NoErr(disp.Speak(g, "user", "text-chan", "two"))
	is.NoErr(disp.Speak(g, "user", "text-chan", "three"))

	close(gate)
	waitFor(t, func() bool { return len(synth.texts()) == 3 })
	is.Equal(synth.texts(), []string{"one", "two", "three"}) // strict submission order

	waitFor(t, func() bool { return g.State() == StateConnectedIdle })
	is.Equal(backend.lastConn().speakCount(), 1) // one playback loop served all three
}

func TestConcurrentSpeakCreatesSingleSource(t *testing.T) {
	is := is.New(t)

	gate := make(chan struct{})
	synth := &fakeSynth{gate: gate}
	reg, disp, backend, _, _ := newSpeakStack(synth, 5)
	g := reg.Guild("g1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, msg := range []string{"first", "second"} {
		wg.Add(1)
		go func(i int, msg string) {
			defer wg.Done()
			errs[i] = disp.Speak(g, "user", "text-chan", msg)
		}(i, msg)
	}
	wg.Wait()

	is.NoErr(errs[0])
	is.NoErr(errs[1])
	is.Equal(backend.joinCount(), 1) // exactly one connection established

	close(gate)
	waitFor(t, func() bool { return len(synth.texts()) == 2 }) // both requests landed
	waitFor(t, func() bool { return g.State() == StateConnectedIdle })
	is.Equal(backend.lastConn().speakCount(), 1) // exactly one source, one loop
}

func TestSpeakQueueFull(t *testing.T) {
	is := is.New(t)

	gate := make(chan struct{})
	synth := &fakeSynth{gate: gate}
	reg, disp, _, _, _ := newSpeakStack(synth, 1)
	g := reg.Guild("g1")

	is.NoErr(disp.Speak(g, "user", "text-chan", "one"))
	waitFor(t, func() bool { return len(synth.texts()) == 1 }) // "one" left the queue

	is.NoErr(disp.Speak(g, "user", "text-chan", "two")) // fills the queue

	err := disp.Speak(g, "user", "text-chan", "three")
	is.True(errors.Is(err, tts.ErrQueueFull))

	close(gate)
	waitFor(t, func() bool { return len(synth.texts()) == 2 }) // "three" was discarded
}

func TestSpeakFollowsInvokerAcrossChannels(t *testing.T) {
	is := is.New(t)

	synth := &fakeSynth{}
	reg, disp, backend, pre, _ := newSpeakStack(synth, 5)
	g := reg.Guild("g1")

	is.NoErr(disp.Speak(g, "user", "text-chan", "here"))
	waitFor(t, func() bool { return g.State() == StateConnectedIdle })

	pre.setChannel("user", "chan-b")
	is.NoErr(disp.Speak(g, "user", "text-chan", "there"))
	is.Equal(g.ChannelID(), "chan-b")
	is.Equal(backend.lastConn().moveHistory()[0], "chan-b")

	waitFor(t, func() bool { return len(synth.texts()) == 2 })
}

func TestSpeakMoveDeniedLeavesSessionAlone(t *testing.T) {
	is := is.New(t)

	synth := &fakeSynth{}
	reg, disp, _, pre, checks := newSpeakStack(synth, 5)
	g := reg.Guild("g1")

	is.NoErr(disp.Speak(g, "user", "text-chan", "here"))
	waitFor(t, func() bool { return g.State() == StateConnectedIdle })

	checks.denyDisconnect = &PermissionError{Missing: []string{"Move Members"}}
	pre.setChannel("intruder", "chan-b")
	pre.setChannel("user", "chan-a")

	err := disp.Speak(g, "intruder", "text-chan", "hijack")
	var pe *PermissionError
	is.True(errors.As(err, &pe))
	is.Equal(g.ChannelID(), "chan-a") // session untouched
	is.Equal(len(synth.texts()), 1)  // hijack was never submitted
}
