package discord

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// hashCommand creates a deterministic hash of the fields Discord stores for
// a command, ignoring ids and versions.
func hashCommand(c *discordgo.ApplicationCommand) string {
	obj := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if c.DefaultMemberPermissions != nil {
		obj["permissions"] = *c.DefaultMemberPermissions
	}
	if c.DMPermission != nil {
		obj["dm"] = *c.DMPermission
	}
	if c.NSFW != nil {
		obj["nsfw"] = *c.NSFW
	}
	if len(c.Options) > 0 {
		obj["options"] = normalizeOptions(c.Options)
	}
	return digest(obj)
}

// hashCommandSet hashes a whole command list, order-independent.
func hashCommandSet(cmds []*discordgo.ApplicationCommand) string {
	hashes := make([]string, 0, len(cmds))
	for _, c := range cmds {
		hashes = append(hashes, c.Name+"="+hashCommand(c))
	}
	sort.Strings(hashes)
	return digest(hashes)
}

func digest(v any) string {
	data, _ := json.Marshal(v)
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Option order is kept: Discord requires required options first and shows
// subcommands in the order given.
func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":         o.Name,
			"description":  o.Description,
			"type":         o.Type,
			"required":     o.Required,
			"autocomplete": o.Autocomplete,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	return out
}
