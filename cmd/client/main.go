// Hangman Client - Main Entry Point
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"hangman/internal/client"
	"hangman/internal/config"
	"hangman/pkg/logger"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "hangman-client",
		Usage:   "play multiplayer hangman in the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "server host"},
			&cli.StringFlag{Name: "port", Value: "8080", Usage: "server port"},
			&cli.StringFlag{Name: "username", Usage: "name announced after connecting"},
			&cli.StringFlag{Name: "log-level", Value: "WARN", Usage: "log level (DEBUG, INFO, WARN, ERROR)"},
			&cli.StringFlag{Name: "log-file", Usage: "log file path (optional)"},
			&cli.StringFlag{Name: "log-dir", Usage: "write server.log and client.log under this directory"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Client failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if err := initLogging(cmd.String("log-level"), cmd.String("log-file"), cmd.String("log-dir")); err != nil {
		return err
	}
	defer logger.Client.Close()

	cfg := config.Load(logger.Client)
	port, err := config.ParsePort(cmd.String("port"))
	if err != nil {
		logger.Client.Warn("%v, using default %d", err, config.DefaultPort)
		port = config.DefaultPort
	}

	logger.Client.Info("Starting Hangman Client v%s", version)
	gameClient := client.NewClient(cfg, cmd.String("host"), port, cmd.String("username"),
		os.Stdin, os.Stdout, logger.Client)

	setupGracefulShutdown(gameClient)

	if err := gameClient.Start(); err != nil {
		return err
	}
	logger.Client.Info("Client shutting down gracefully")
	return nil
}

// initLogging sets up the logging system
func initLogging(levelName, logFile, logDir string) error {
	level, ok := logger.ParseLevel(levelName)
	if !ok {
		logger.Client.Warn("Unknown log level %q, using INFO", levelName)
	}
	logger.SetGlobalLogLevel(level)

	if logFile != "" {
		if err := logger.Client.SetFile(logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Client.Info("Logging to file: %s", logFile)
	} else if logDir != "" {
		if err := logger.InitializeFileLogging(logDir); err != nil {
			logger.Client.Warn("Could not initialize file logging: %v", err)
		}
	}
	return nil
}

// setupGracefulShutdown disconnects cleanly on interrupt signals
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
		os.Exit(0)
	}()
}
