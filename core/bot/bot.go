// Package bot is a minimal scripted client built on top of source/session:
// a chat-command dispatcher in the same command-map shape the teacher's
// freeroam gamemode used for its admin/player commands, repurposed here
// from SA-MP chat commands to this protocol's "chat" event.
package bot

import (
	"fmt"
	"strings"

	"samp-server-go/core/events"
	"samp-server-go/pkg/logger"
	"samp-server-go/source/model"
	"samp-server-go/source/session"
)

// Command is one registered chat command: a name, its usage text, and the
// handler invoked with the arguments following the command word. The
// returned string (if non-empty) is echoed back as a chat message.
type Command struct {
	Name        string
	Description string
	Handler     func(*Bot, *model.Player, []string) string
}

// Bot drives one session.Client: it answers registered chat commands and
// exposes the hooks a caller can still subscribe to directly via Client().
type Bot struct {
	client   *session.Client
	commands map[string]Command
	prefix   string
}

// New wraps client, registers the built-in command set, and subscribes to
// the "chat" event so incoming messages starting with prefix are dispatched
// to a matching command.
func New(client *session.Client, prefix string) *Bot {
	b := &Bot{
		client:   client,
		commands: make(map[string]Command),
		prefix:   prefix,
	}
	b.registerDefaultCommands()
	client.Subscribe("chat", b.onChat)
	return b
}

// Client returns the underlying session, for callers that want to subscribe
// to additional events (death, player_vote, player_move, ...) alongside the bot.
func (b *Bot) Client() *session.Client {
	return b.client
}

// Register adds or replaces a command.
func (b *Bot) Register(cmd Command) {
	b.commands[cmd.Name] = cmd
}

func (b *Bot) registerDefaultCommands() {
	b.Register(Command{
		Name:        "help",
		Description: "list available commands",
		Handler:     (*Bot).cmdHelp,
	})
	b.Register(Command{
		Name:        "ping",
		Description: "report the current keep-alive latency",
		Handler:     (*Bot).cmdPing,
	})
}

func (b *Bot) onChat(ev events.Event) {
	msg, ok := ev.Data.(session.ChatMessage)
	if !ok || !strings.HasPrefix(msg.Message, b.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(msg.Message, b.prefix))
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]

	cmd, found := b.commands[name]
	if !found {
		return
	}
	reply := cmd.Handler(b, msg.Sender, args)
	if reply == "" {
		return
	}
	if err := b.client.SendChat(reply); err != nil {
		logger.Warn("bot: failed to reply to %q: %v", name, err)
	}
}

func (b *Bot) cmdHelp(_ *model.Player, _ []string) string {
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, b.prefix+name)
	}
	return "commands: " + strings.Join(names, ", ")
}

func (b *Bot) cmdPing(_ *model.Player, _ []string) string {
	return fmt.Sprintf("pong (%d ms)", b.client.LatencyMs())
}
