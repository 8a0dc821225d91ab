package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskie-agent/taskie/taskie/agent"
	"github.com/taskie-agent/taskie/taskie/config"
	"github.com/taskie-agent/taskie/taskie/db"
)

// newChatCmd creates the interactive chat loop command.
func newChatCmd() *cobra.Command {
	var (
		configPath string
		owner      string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(configPath, owner, debug)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&owner, "owner", "local", "owner identity for this session")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func runChat(configPath, owner string, debug bool) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.ConnectToDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	a, err := agent.NewFactory(cfg, logger).Build(database)
	if err != nil {
		return fmt.Errorf("build agent: %w", err)
	}

	conversationID := agent.NewConversationID()
	logger.Info().Str("conversation_id", conversationID).Str("owner", owner).Msg("session started")

	fmt.Println("Taskie is ready. Type a message, or 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		reply, err := a.HandleMessage(context.Background(), agent.Envelope{
			ConversationID: conversationID,
			Owner:          owner,
			Text:           line,
			Timestamp:      time.Now().UTC(),
		})
		if err != nil {
			logger.Error().Err(err).Msg("turn failed")
			continue
		}
		fmt.Println(reply.Text)
	}
	return scanner.Err()
}
