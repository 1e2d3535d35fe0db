// Package profile maps invokers to named voice parameter sets.
package profile

import (
	"fmt"
	"sort"
	"sync"
)

// Profile is a named set of speech synthesis parameters.
type Profile struct {
	Name  string
	Voice string
	Speed float64
}

// Default applies whenever an invoker has no profile registered.
var Default = Profile{Name: "alloy", Voice: "alloy", Speed: 1.0}

// Voices enumerates the selectable profiles by alias.
var Voices = map[string]Profile{
	"alloy":   {Name: "alloy", Voice: "alloy", Speed: 1.0},
	"echo":    {Name: "echo", Voice: "echo", Speed: 1.0},
	"fable":   {Name: "fable", Voice: "fable", Speed: 1.0},
	"onyx":    {Name: "onyx", Voice: "onyx", Speed: 1.0},
	"nova":    {Name: "nova", Voice: "nova", Speed: 1.0},
	"shimmer": {Name: "shimmer", Voice: "shimmer", Speed: 1.0},
	"slow":    {Name: "slow", Voice: "onyx", Speed: 0.75},
	"fast":    {Name: "fast", Voice: "nova", Speed: 1.35},
}

// Aliases returns the selectable alias names, sorted.
func Aliases() []string {
	out := make([]string, 0, len(Voices))
	for alias := range Voices {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

type key struct {
	userID    string
	channelID string
}

// Registry maps (invoker, text channel) pairs to a voice alias. Profiles are
// kept in memory only; they reset on restart.
type Registry struct {
	mu    sync.RWMutex
	byKey map[key]string
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[key]string)}
}

// Assign binds an alias to the invoker in the given text channel.
func (r *Registry) Assign(userID, channelID, alias string) error {
	if _, ok := Voices[alias]; !ok {
		return fmt.Errorf("unknown voice %q", alias)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[key{userID, channelID}] = alias
	return nil
}

// Resolve returns the invoker's profile for the channel, or Default on a miss.
func (r *Registry) Resolve(userID, channelID string) Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if alias, ok := r.byKey[key{userID, channelID}]; ok {
		if p, ok := Voices[alias]; ok {
			return p
		}
	}
	return Default
}
