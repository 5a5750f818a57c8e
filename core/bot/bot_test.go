package bot

import (
	"strings"
	"testing"
	"time"

	"samp-server-go/core/events"
	"samp-server-go/source/model"
	"samp-server-go/source/session"
)

func newTestBot() (*Bot, *events.Bus) {
	bus := events.New()
	client := session.New(session.DefaultConfig("tester"), bus)
	return New(client, "/"), bus
}

func TestHelpListsRegisteredCommands(t *testing.T) {
	b, _ := newTestBot()
	reply := b.cmdHelp(nil, nil)
	if !strings.Contains(reply, "/help") || !strings.Contains(reply, "/ping") {
		t.Errorf("cmdHelp() = %q, want it to list /help and /ping", reply)
	}
}

func TestRegisterOverridesACommand(t *testing.T) {
	b, _ := newTestBot()
	b.Register(Command{Name: "ping", Handler: func(*Bot, *model.Player, []string) string { return "overridden" }})
	if got := b.commands["ping"].Handler(b, nil, nil); got != "overridden" {
		t.Errorf("Handler() = %q, want overridden", got)
	}
}

func TestOnChatIgnoresMessagesWithoutPrefix(t *testing.T) {
	b, bus := newTestBot()
	calls := make(chan string, 1)
	b.Register(Command{Name: "help", Handler: func(*Bot, *model.Player, []string) string {
		calls <- "called"
		return ""
	}})

	bus.Emit(events.Event{Name: "chat", Data: session.ChatMessage{Message: "help"}}) // no prefix

	select {
	case <-calls:
		t.Fatal("command dispatched for a message without the bot prefix")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOnChatDispatchesRegisteredCommand(t *testing.T) {
	b, bus := newTestBot()
	calls := make(chan []string, 1)
	b.Register(Command{Name: "echo", Handler: func(_ *Bot, _ *model.Player, args []string) string {
		calls <- args
		return ""
	}})

	bus.Emit(events.Event{Name: "chat", Data: session.ChatMessage{Message: "/echo one two"}})

	select {
	case args := <-calls:
		if len(args) != 2 || args[0] != "one" || args[1] != "two" {
			t.Errorf("args = %v, want [one two]", args)
		}
	case <-time.After(time.Second):
		t.Fatal("echo command never dispatched")
	}
}
