// Hangman Server - Main Entry Point
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"hangman/internal/config"
	"hangman/internal/game"
	"hangman/internal/server"
	"hangman/pkg/logger"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:      "hangman-server",
		Usage:     "multiplayer hangman over TCP",
		Version:   version,
		ArgsUsage: "[port]",
		Description: `Players connect over TCP (one "##"-delimited message per line) or,
with --ws-addr, over WebSocket. Every action is broadcast to all players.

EXAMPLES:
    # Start on the default port 8080
    hangman-server

    # Start on a specific port with debug logging
    hangman-server --log-level DEBUG 9000

    # Serve WebSocket players and a custom word list
    hangman-server --ws-addr :8081 --words /var/game/words.txt`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "interface to listen on (default all)"},
			&cli.StringFlag{Name: "ws-addr", Usage: "address of the WebSocket gateway (disabled when empty)"},
			&cli.StringFlag{Name: "words", Usage: "word list file, one word per line"},
			&cli.StringFlag{Name: "log-level", Value: "INFO", Usage: "log level (DEBUG, INFO, WARN, ERROR)"},
			&cli.StringFlag{Name: "log-file", Usage: "log file path (optional)"},
			&cli.StringFlag{Name: "log-dir", Usage: "write server.log and client.log under this directory"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load(logger.Server)
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("ws-addr") {
		cfg.WSAddr = cmd.String("ws-addr")
	}
	if cmd.IsSet("words") {
		cfg.WordsFile = cmd.String("words")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-file") {
		cfg.LogFile = cmd.String("log-file")
	}
	cfg.Port = config.ResolvePort(cmd.Args().Slice(), cfg.Port, logger.Server)

	if err := initLogging(cfg, cmd.String("log-dir")); err != nil {
		return err
	}
	defer logger.Server.Close()

	logger.Server.Info("Starting Hangman Server v%s", version)

	round := game.NewRound(loadWords(cfg.WordsFile), nil)
	gameServer := server.NewServer(cfg, round, logger.Server)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- gameServer.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Server.Info("Received shutdown signal, stopping server...")
		return gameServer.Stop()
	}
}

// initLogging sets up the logging system
func initLogging(cfg config.Config, logDir string) error {
	level, ok := logger.ParseLevel(cfg.LogLevel)
	if !ok {
		logger.Server.Warn("Unknown log level %q, using INFO", cfg.LogLevel)
	}
	logger.SetGlobalLogLevel(level)

	if cfg.LogFile != "" {
		if err := logger.Server.SetFile(cfg.LogFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Server.Info("Logging to file: %s", cfg.LogFile)
	} else if logDir != "" {
		if err := logger.InitializeFileLogging(logDir); err != nil {
			logger.Server.Warn("Could not initialize file logging: %v", err)
		}
	}
	return nil
}

// loadWords reads the word list, falling back to the built-in words
func loadWords(path string) *game.WordList {
	if path == "" {
		return game.DefaultWordList()
	}
	words, err := game.LoadWordList(path)
	if err != nil {
		logger.Server.Warn("Could not load words from %s: %v, using built-in list", path, err)
		return game.DefaultWordList()
	}
	logger.Server.Info("Loaded %d words from %s", words.Len(), path)
	return words
}
