package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"blockdrop/config"

	"github.com/kirsle/configdir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const logFile = "blockdrop.log"

var (
	configFile string
	debug      bool

	settings *viper.Viper
	cfg      *config.Config
	logger   = slog.New(slog.DiscardHandler)
	logOut   io.Closer
)

// flagKeys maps command line flags to the config keys they override.
var flagKeys = map[string]string{
	"name":       "player.name",
	"ghost":      "client.ghost",
	"sound":      "client.sound",
	"level":      "game.start_level",
	"randomizer": "game.randomizer",
	"seed":       "game.seed",
	"server":     "scoreboard.address",
}

var rootCmd = &cobra.Command{
	Use:   "blockdrop",
	Short: "Falling block puzzle for the terminal",
	Long: `BlockDrop drops pieces on a well of 10 by 20 cells. Complete rows to clear
them, score points and speed up. Finished games are recorded on the local
scoreboard or sent to a score server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.New(configFile)
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := settings.BindPFlag(key, f); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
		c, err := config.Load(settings)
		if err != nil {
			return err
		}
		cfg = c
		if debug {
			if err := openLog(); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logOut != nil {
			logOut.Close()
		}
	},
	RunE: play,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default "+filepath.Join(config.Dir(), "config.yaml")+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write a debug log to "+logFile+" in the config dir")

	flags := rootCmd.Flags()
	flags.String("name", "", "player name recorded on the scoreboard")
	flags.Bool("ghost", true, "show where the piece will land")
	flags.Bool("sound", true, "ring the terminal bell on line clears")
	flags.Int("level", 1, "starting level")
	flags.String("randomizer", string(config.Uniform), "piece randomizer, uniform or bag")
	flags.Uint64("seed", 0, "randomizer seed, 0 picks one from the clock")
	flags.String("server", "", "score server address, empty keeps scores local")
}

func openLog() error {
	if err := configdir.MakePath(config.Dir()); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(config.Dir(), logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logOut = f
	logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
