// Package config loads the settings of the game and the score server from
// the config file, the environment and the command line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"blockdrop/blockdrop"

	"github.com/kirsle/configdir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	appName    = "blockdrop"
	envPrefix  = "BLOCKDROP"
	configName = "config"
	configType = "yaml"
)

var ErrInvalid = errors.New("invalid configuration")

type Randomizer string

const (
	Uniform Randomizer = "uniform"
	Bag     Randomizer = "bag"
)

type Config struct {
	Board      Board      `mapstructure:"board"`
	Game       Game       `mapstructure:"game"`
	Player     Player     `mapstructure:"player"`
	Client     Client     `mapstructure:"client"`
	Scoreboard Scoreboard `mapstructure:"scoreboard"`
	Server     Server     `mapstructure:"server"`
}

type Board struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Game struct {
	StartLevel   int           `mapstructure:"start_level"`
	BaseInterval time.Duration `mapstructure:"base_interval"`
	Randomizer   Randomizer    `mapstructure:"randomizer"`
	// Seed 0 seeds the randomizer from the clock.
	Seed uint64 `mapstructure:"seed"`
}

type Player struct {
	Name string `mapstructure:"name"`
}

type Client struct {
	Ghost bool `mapstructure:"ghost"`
	Sound bool `mapstructure:"sound"`
}

type Scoreboard struct {
	// Address of the score server, empty to keep scores local.
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Server struct {
	GRPCAddress string `mapstructure:"grpc_address"`
	HTTPAddress string `mapstructure:"http_address"`
	// Database is the sqlite file, empty keeps the scores in memory.
	Database string `mapstructure:"database"`
}

var defaults = map[string]any{
	"board.width":         10,
	"board.height":        20,
	"game.start_level":    1,
	"game.base_interval":  "1s",
	"game.randomizer":     string(Uniform),
	"game.seed":           0,
	"player.name":         "player",
	"client.ghost":        true,
	"client.sound":        true,
	"scoreboard.address":  "",
	"scoreboard.timeout":  "3s",
	"server.grpc_address": ":9000",
	"server.http_address": ":9001",
	"server.database":     "",
}

// Dir is the directory the config file lives in.
func Dir() string {
	return configdir.LocalConfig(appName)
}

// New returns a viper instance with the defaults, the environment and the
// config file search path set up. file overrides the search path.
func New(file string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(Dir())
	}
	return v
}

// Load reads the config file, if there's one, and decodes the settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode turns the settings held by v into a validated Config.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		randomizerHookFunc(),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func randomizerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(Randomizer("")) {
			return data, nil
		}
		return Randomizer(strings.ToLower(strings.TrimSpace(reflect.ValueOf(data).String()))), nil
	}
}

// Save writes the current settings to the config file. An existing file is
// never overwritten.
func Save(v *viper.Viper) (string, error) {
	if err := configdir.MakePath(Dir()); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	path := filepath.Join(Dir(), configName+"."+configType)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Board.Width < 4:
		return fmt.Errorf("%w: board width must be at least 4, got %d", ErrInvalid, c.Board.Width)
	case c.Board.Height < 4:
		return fmt.Errorf("%w: board height must be at least 4, got %d", ErrInvalid, c.Board.Height)
	case c.Game.StartLevel < 1:
		return fmt.Errorf("%w: start level must be at least 1, got %d", ErrInvalid, c.Game.StartLevel)
	case c.Game.BaseInterval < blockdrop.MinInterval:
		return fmt.Errorf("%w: base interval must be at least %v, got %v", ErrInvalid, blockdrop.MinInterval, c.Game.BaseInterval)
	case c.Game.Randomizer != Uniform && c.Game.Randomizer != Bag:
		return fmt.Errorf("%w: unknown randomizer %q", ErrInvalid, c.Game.Randomizer)
	case c.Scoreboard.Timeout <= 0:
		return fmt.Errorf("%w: scoreboard timeout must be positive, got %v", ErrInvalid, c.Scoreboard.Timeout)
	}
	return nil
}

// GameOptions returns the session options described by the config.
func (c *Config) GameOptions() blockdrop.Options {
	opts := blockdrop.Options{
		Width:        c.Board.Width,
		Height:       c.Board.Height,
		StartLevel:   c.Game.StartLevel,
		BaseInterval: c.Game.BaseInterval,
		Seed:         c.Game.Seed,
	}
	if c.Game.Randomizer == Bag {
		opts.Randomizer = blockdrop.NewBagRandomizer(c.Game.Seed)
	} else {
		opts.Randomizer = blockdrop.NewUniformRandomizer(c.Game.Seed)
	}
	return opts
}
