// Command amongusctl is a tiny CLI wrapping source/session: it connects to
// a matchmaking server, optionally joins a lobby by code, and runs the
// example core/bot chat-command dispatcher until the session closes or the
// process receives an interrupt. Mirrors the teacher's core/main.go shape
// (banner, loadConfig, goroutine running the long-lived loop, signal
// select, graceful shutdown).
package main

import (
	"os"
	"os/signal"
	"syscall"

	"samp-server-go/core/bot"
	"samp-server-go/core/events"
	"samp-server-go/pkg/logger"
	"samp-server-go/source/session"
)

const (
	version = "0.1.0"
	author  = "amongusctl"
)

// ClientConfig holds everything needed to start a session, following the
// teacher's loadConfig() pattern: a plain struct with documented defaults,
// no flag/env parsing.
type ClientConfig struct {
	Host        string
	Port        int
	Name        string
	GameVersion session.GameVersion
	Spectator   bool
	LobbyCode   string
}

func loadConfig() ClientConfig {
	return ClientConfig{
		Host:        "127.0.0.1",
		Port:        22023,
		Name:        "amongusctl",
		GameVersion: session.GameVersion{Year: 2021, Month: 6, Day: 30, Revision: 0},
		Spectator:   false,
		LobbyCode:   "",
	}
}

func main() {
	logger.Banner("amongusctl - Among Us client", version)

	logger.Section("Configuration")
	cfg := loadConfig()
	logger.Info("Author: %s", author)
	logger.InfoCyan("Target: %s:%d", cfg.Host, cfg.Port)
	logger.Info("Display name: %s", cfg.Name)
	logger.Info("Spectator: %v", cfg.Spectator)
	logger.Success("Configuration loaded successfully")

	sessCfg := session.DefaultConfig(cfg.Name)
	sessCfg.Spectator = cfg.Spectator
	client := session.New(sessCfg, events.New())

	_ = bot.New(client, "/")
	setupLifecycleLogging(client)

	errChan := make(chan error, 1)
	go func() {
		if err := client.Connect(cfg.Host, cfg.Port, cfg.GameVersion); err != nil {
			errChan <- err
			return
		}
		if cfg.LobbyCode != "" {
			if err := client.JoinLobby(cfg.LobbyCode); err != nil {
				errChan <- err
				return
			}
		}
		errChan <- client.RunUntilClosed()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("session error: %v", err)
		}
		logger.Success("session closed")
	case sig := <-sigChan:
		logger.Section("Shutdown")
		logger.Warn("received signal: %v", sig)
		logger.Info("disconnecting...")
		client.Disconnect(false)
		logger.Success("disconnected")
	}
}

func setupLifecycleLogging(client *session.Client) {
	client.Subscribe("ready", func(events.Event) {
		logger.Success("handshake complete, session ready")
	})
	client.Subscribe("game_join", func(events.Event) {
		logger.Info("joined lobby")
	})
	client.Subscribe("disconnect", func(events.Event) {
		logger.Warn("server disconnected the session")
	})
}
