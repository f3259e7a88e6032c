package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"blockdrop/client"
	"blockdrop/config"
	"blockdrop/scoreboard"

	"github.com/kirsle/configdir"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[2J\033[H\033[?25h"
	scoresFile = "scores.db"
)

func play(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	restore, err := startConsole()
	if err != nil {
		return err
	}
	defer restore()

	cl, err := client.New(logger, &client.Options{
		Game:    cfg.GameOptions(),
		Name:    cfg.Player.Name,
		NoGhost: !cfg.Client.Ghost,
		Sound:   cfg.Client.Sound,
		Timeout: cfg.Scoreboard.Timeout,
	}, store)
	if err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}
	defer cl.Close()

	logger.Info("game client started", slog.String("name", cfg.Player.Name), slog.String("server", cfg.Scoreboard.Address))
	cl.Start()
	return nil
}

// openStore connects to the score server when there's one configured and
// falls back to the scoreboard kept in the config dir.
func openStore(ctx context.Context) (scoreboard.Store, error) {
	if cfg.Scoreboard.Address != "" {
		c, err := scoreboard.Dial(cfg.Scoreboard.Address, cfg.Scoreboard.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to score server: %w", err)
		}
		return c, nil
	}
	if err := configdir.MakePath(config.Dir()); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	s, err := scoreboard.OpenSQLite(ctx, filepath.Join(config.Dir(), scoresFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open local scoreboard: %w", err)
	}
	return s, nil
}

// startConsole hides the cursor and returns a func that puts the terminal
// back the way it was.
func startConsole() (func(), error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("unable to read the terminal state: %w", err)
	}
	fmt.Print(hideCursor)

	return func() {
		if err := term.Restore(fd, oldState); err != nil {
			logger.Error("unable to restore the terminal original state", slog.String("error", err.Error()))
		}
		fmt.Print(showCursor)
	}, nil
}
