package commands

import (
	"context"
	"sort"
	"strings"
)

// Handler handles a parsed command.
type Handler func(ctx context.Context, req *Request) Result

// Request is a message that matched a command.
type Request struct {
	*Message

	// Args are the whitespace separated arguments after the command name.
	Args []string

	// Rest is the raw text after the command name.
	Rest string
}

// Command is a registered chat command.
type Command struct {
	Name        string
	Usage       string
	Description string

	// MinArgs is the number of required arguments.
	MinArgs int

	// GuildOnly commands are rejected in DMs.
	GuildOnly bool

	// FullOnly commands only exist in the full variant.
	FullOnly bool

	Handler Handler
}

// Registry maps command names to commands.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]*Command),
	}
}

// Register adds cmd, replacing any command with the same name.
func (r *Registry) Register(cmd *Command) {
	r.cmds[strings.ToLower(cmd.Name)] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.cmds[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns the commands available in variant, sorted by name.
func (r *Registry) Commands(variant Variant) []*Command {
	out := make([]*Command, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		if cmd.FullOnly && variant != VariantFull {
			continue
		}
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Parse splits content into a command name, its arguments and the raw rest.
// ok is false when content does not start with prefix or names no command.
func Parse(prefix, content string) (name string, args []string, rest string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, "", false
	}

	body := strings.TrimPrefix(content, prefix)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", nil, "", false
	}

	name = strings.ToLower(fields[0])
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), fields[0]))
	return name, fields[1:], rest, true
}
