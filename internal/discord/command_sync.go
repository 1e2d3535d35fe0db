package discord

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// commandCacheDir holds the per-guild digests of the definitions last pushed
// to Discord, so unchanged commands skip the registration round-trip.
var commandCacheDir = filepath.Join("data", "commands")

// commandFingerprint digests the definition fields this bot registers: name,
// description, type, and flat options with their choices. Fields assigned by
// Discord at runtime (IDs, versions) never enter the digest, and option order
// does not affect it.
func commandFingerprint(cmd *discordgo.ApplicationCommand) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d", cmd.Name, cmd.Description, cmd.Type)

	opts := make([]*discordgo.ApplicationCommandOption, len(cmd.Options))
	copy(opts, cmd.Options)
	sort.Slice(opts, func(i, j int) bool { return opts[i].Name < opts[j].Name })

	for _, o := range opts {
		fmt.Fprintf(&b, ";%s|%s|%d|%t", o.Name, o.Description, o.Type, o.Required)
		for _, c := range o.Choices {
			fmt.Fprintf(&b, ",%s=%v", c.Name, c.Value)
		}
	}

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func guildCachePath(guildID string) string {
	return filepath.Join(commandCacheDir, guildID+".json")
}

// loadCommandDigests returns the cached digests for a guild; empty when no
// cache has been written yet.
func loadCommandDigests(guildID string) map[string]string {
	digests := make(map[string]string)
	raw, err := os.ReadFile(guildCachePath(guildID))
	if err == nil {
		_ = json.Unmarshal(raw, &digests)
	}
	return digests
}

func saveCommandDigests(guildID string, digests map[string]string) {
	path := guildCachePath(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Failed to create command cache directory")
		return
	}
	raw, _ := json.MarshalIndent(digests, "", "  ")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Failed to write command cache")
	}
}
