package pasur

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Difficulty of the computer players. The bot policy does not look at it yet.
type Difficulty string

// Bot difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config are the options a game is created with.
type Config struct {
	PlayerCount   int        `toml:"player_count"`
	Humans        int        `toml:"humans"`
	Names         []string   `toml:"names"`
	BotDifficulty Difficulty `toml:"bot_difficulty"`
	TargetScore   int        `toml:"target_score"`
	GameSpeed     int        `toml:"game_speed"`

	AllowJackSur      bool `toml:"allow_jack_sur"`
	AllowLastCardSur  bool `toml:"allow_last_card_sur"`
	CancelOpponentSur bool `toml:"cancel_opponent_sur"`
}

// DefaultConfig is a two player game against one bot, played to 62.
func DefaultConfig() Config {
	return Config{
		PlayerCount:   2,
		Humans:        1,
		BotDifficulty: Medium,
		TargetScore:   62,
		GameSpeed:     2,
	}
}

// Validate reports the first option that is out of range.
func (c Config) Validate() error {
	switch {
	case c.PlayerCount < 2 || c.PlayerCount > 4:
		return fmt.Errorf("%w: player_count must be between 2 and 4, got %d", ErrInvalidConfig, c.PlayerCount)
	case c.Humans < 0 || c.Humans > c.PlayerCount:
		return fmt.Errorf("%w: humans must be between 0 and %d, got %d", ErrInvalidConfig, c.PlayerCount, c.Humans)
	case len(c.Names) > c.PlayerCount:
		return fmt.Errorf("%w: %d names for %d players", ErrInvalidConfig, len(c.Names), c.PlayerCount)
	case c.TargetScore <= 0:
		return fmt.Errorf("%w: target_score must be positive, got %d", ErrInvalidConfig, c.TargetScore)
	case c.GameSpeed < 1 || c.GameSpeed > 3:
		return fmt.Errorf("%w: game_speed must be 1, 2 or 3, got %d", ErrInvalidConfig, c.GameSpeed)
	}
	switch c.BotDifficulty {
	case Easy, Medium, Hard:
	default:
		return fmt.Errorf("%w: unknown bot_difficulty %q", ErrInvalidConfig, c.BotDifficulty)
	}
	return nil
}

// LoadConfig reads a TOML rules file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, fmt.Errorf("reading rules file %s: %w", path, err)
	}
	return c, c.Validate()
}

// Pacing are the pauses between the visible steps of a game. They only exist so that people
// can follow along; the rules never depend on them.
type Pacing struct {
	Reveal      time.Duration // played card sits on the table before it takes
	CaptureHold time.Duration // taken cards are shown before the turn moves on
	BotThink    time.Duration
	Redeal      time.Duration
	HandBreak   time.Duration
	ResumeBot   time.Duration
}

// PacingFor returns the pauses for a game speed of 1 (slow), 2 or 3 (fast).
func PacingFor(speed int) Pacing {
	factor := map[int]float64{1: 2, 2: 1, 3: 0.5}[speed]
	if factor == 0 {
		factor, speed = 1, 2
	}
	scaled := func(ms float64) time.Duration {
		return time.Duration(ms*factor) * time.Millisecond
	}
	return Pacing{
		Reveal:      scaled(1200),
		CaptureHold: scaled(800),
		BotThink:    time.Duration(map[int]int{1: 2500, 2: 1500, 3: 800}[speed]) * time.Millisecond,
		Redeal:      time.Duration(map[int]int{1: 1500, 2: 1000, 3: 500}[speed]) * time.Millisecond,
		HandBreak:   3 * time.Second,
		ResumeBot:   500 * time.Millisecond,
	}
}
