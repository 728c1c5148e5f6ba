package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	KindHuman = "human"
	KindBot   = "bot"
)

var (
	ErrPlayerCount     = errors.New("exactly two players are required")
	ErrDuplicateMark   = errors.New("players must use distinct marks")
	ErrDuplicateName   = errors.New("players must use distinct names")
	ErrEmptyName       = errors.New("player name must not be empty")
	ErrUnknownKind     = errors.New("unknown player kind")
	ErrBoardDimensions = errors.New("board dimensions must be positive")
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Board    Board    `yaml:"board"`
	Players  []Player `yaml:"players"`
	Search   Search   `yaml:"search"`
	Cache    Cache    `yaml:"cache"`
	Redis    Redis    `yaml:"redis"`
	Render   Render   `yaml:"render"`
}

type Board struct {
	Width  int `yaml:"width" env:"BOARD_WIDTH" env-default:"3"`
	Height int `yaml:"height" env:"BOARD_HEIGHT" env-default:"3"`
}

type Player struct {
	Name       string `yaml:"name"`
	Mark       string `yaml:"mark"`
	Kind       string `yaml:"kind"`
	Difficulty int    `yaml:"difficulty"`
}

type Search struct {
	Workers int `yaml:"workers" env:"SEARCH_WORKERS" env-default:"1"`
}

type Cache struct {
	Enabled bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"24h"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Render struct {
	Monochrome bool `yaml:"monochrome" env:"RENDER_MONOCHROME" env-default:"false"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate checks what the game needs before a board can be built.
func (that *Config) Validate() error {
	if that.Board.Width <= 0 || that.Board.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBoardDimensions, that.Board.Width, that.Board.Height)
	}

	if len(that.Players) != 2 {
		return fmt.Errorf("%w: got %d", ErrPlayerCount, len(that.Players))
	}

	for _, player := range that.Players {
		if strings.TrimSpace(player.Name) == "" {
			return ErrEmptyName
		}

		if kind := player.KindOrDefault(); kind != KindHuman && kind != KindBot {
			return fmt.Errorf("%w: %q", ErrUnknownKind, player.Kind)
		}
	}

	if that.Players[0].Name == that.Players[1].Name {
		return fmt.Errorf("%w: %q", ErrDuplicateName, that.Players[0].Name)
	}

	if that.Players[0].MarkOrDefault() == that.Players[1].MarkOrDefault() {
		return fmt.Errorf("%w: %q", ErrDuplicateMark, that.Players[0].MarkOrDefault())
	}

	return nil
}

// MarkOrDefault is the first character of the mark, or of the name when no mark is set.
func (that Player) MarkOrDefault() string {
	mark := that.Mark
	if mark == "" {
		mark = strings.ToUpper(that.Name)
	}

	for _, r := range mark {
		return string(r)
	}

	return ""
}

// KindOrDefault treats an unset kind as a human player.
func (that Player) KindOrDefault() string {
	if that.Kind == "" {
		return KindHuman
	}

	return that.Kind
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
