// Package commands maps chat commands to handlers and runs each one through
// parse, provider call, render and reply.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

// HandlerFunc runs a command with already validated arguments. It returns
// the replies to deliver in order, or an error. A handler that fails must
// release any replies it already built.
type HandlerFunc func(ctx context.Context, args []string) ([]replies.Reply, error)

// Command is one registered chat command.
type Command struct {
	// Name without the leading slash, e.g. "launch".
	Name string
	// Args are the placeholders shown in usage, e.g. "<instance_id>". The
	// command requires at least len(Args) arguments.
	Args        []string
	Description string
	// Failure is the reply sent when the provider call or rendering fails.
	Failure string
	Handler HandlerFunc
}

// MinArgs is the number of arguments the command requires.
func (c Command) MinArgs() int {
	return len(c.Args)
}

// Usage renders "Usage: /name <arg> ...".
func (c Command) Usage() string {
	return "Usage: " + c.Synopsis()
}

// Synopsis renders "/name <arg> ...".
func (c Command) Synopsis() string {
	return strings.Join(append([]string{"/" + c.Name}, c.Args...), " ")
}

// Registry is an immutable name to command table.
type Registry struct {
	byName map[string]Command
	order  []string
}

// NewRegistry validates and indexes cmds. Names are case-sensitive.
func NewRegistry(cmds ...Command) (*Registry, error) {
	r := &Registry{byName: make(map[string]Command, len(cmds))}

	for _, cmd := range cmds {
		switch {
		case cmd.Name == "":
			return nil, fmt.Errorf("%w: empty name", ErrInvalidCommand)
		case strings.HasPrefix(cmd.Name, "/"):
			return nil, fmt.Errorf("%w: name %q must not start with a slash", ErrInvalidCommand, cmd.Name)
		case strings.ContainsAny(cmd.Name, " \t\n@"):
			return nil, fmt.Errorf("%w: name %q contains whitespace or @", ErrInvalidCommand, cmd.Name)
		case cmd.Handler == nil:
			return nil, fmt.Errorf("%w: %s has no handler", ErrInvalidCommand, cmd.Name)
		}
		if _, exists := r.byName[cmd.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidCommand, cmd.Name)
		}
		cmd.Args = append([]string(nil), cmd.Args...)
		r.byName[cmd.Name] = cmd
		r.order = append(r.order, cmd.Name)
	}

	return r, nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Commands returns the commands in registration order.
func (r *Registry) Commands() []Command {
	return lo.Map(r.order, func(name string, _ int) Command {
		return r.byName[name]
	})
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
