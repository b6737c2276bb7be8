package games

import (
	"encoding/json"
	"fmt"
	"os"
)

// Game identifiers
const (
	NumberHunt        = "caza-numeros"
	SubtractionHunt   = "caza-restas"
	AdditionMaze      = "laberinto-sumas"
	FractionAdventure = "aventura-fracciones"
	NumberPatterns    = "patrones-numericos"
	WhatTimeIsIt      = "que-hora-es"
	ShapeBuilder      = "constructor-figuras"
)

// Catalog is an ordered set of game configurations
type Catalog struct {
	games []Config
	index map[string]int
}

// NewCatalog builds a catalog, validating every entry
func NewCatalog(configs []Config) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(configs))}
	for _, cfg := range configs {
		if err := c.put(cfg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) put(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if i, exists := c.index[cfg.ID]; exists {
		c.games[i] = cfg
		return nil
	}
	c.index[cfg.ID] = len(c.games)
	c.games = append(c.games, cfg)
	return nil
}

// Get returns the configuration for a game id
func (c *Catalog) Get(id string) (Config, bool) {
	i, ok := c.index[id]
	if !ok {
		return Config{}, false
	}
	return c.games[i], true
}

// All returns every game in catalog order
func (c *Catalog) All() []Config {
	out := make([]Config, len(c.games))
	copy(out, c.games)
	return out
}

// DefaultCatalog returns the seven built-in games
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultGames())
	if err != nil {
		panic(fmt.Sprintf("invalid built-in game catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a JSON array of game configurations from path and
// applies it over the built-in games. Entries replace built-ins by id.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config %s: %w", path, err)
	}

	var overrides []Config
	if err := json.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse game config %s: %w", path, err)
	}

	for _, cfg := range overrides {
		if err := c.put(cfg); err != nil {
			return nil, fmt.Errorf("invalid game config %s: %w", path, err)
		}
	}
	return c, nil
}

func defaultGames() []Config {
	return []Config{
		{
			ID:              NumberHunt,
			Name:            "Number Hunt",
			Rule:            RuleSumTarget,
			DurationSeconds: 60,
			Lives:           3,
			PointsPerLevel:  100,
			Thresholds:      Thresholds{100, 200, 300},
			ChoiceCount:     7,
			MaxChoiceCount:  10,
			GoalCount:       1,
		},
		{
			ID:               SubtractionHunt,
			Name:             "Subtraction Hunt",
			Rule:             RuleSubtraction,
			DurationSeconds:  60,
			Lives:            3,
			PointsPerCorrect: 10,
			Thresholds:       Thresholds{30, 60, 100},
			ChoiceCount:      4,
			NewProblemOnMiss: true,
		},
		{
			ID:                 AdditionMaze,
			Name:               "Addition Maze",
			Rule:               RuleAddition,
			DurationSeconds:    120,
			PointsPerCorrect:   20,
			TimeBonusPerSecond: 2,
			Thresholds:         Thresholds{45, 90, 150},
			GoalThresholds:     &Thresholds{60, 120, 200},
			ChoiceCount:        4,
			GoalCount:          5,
			NewProblemOnMiss:   true,
		},
		{
			ID:               FractionAdventure,
			Name:             "Fraction Adventure",
			Rule:             RuleFraction,
			DurationSeconds:  90,
			PointsPerCorrect: 15,
			Thresholds:       Thresholds{45, 75, 120},
		},
		{
			ID:               NumberPatterns,
			Name:             "Number Patterns",
			Rule:             RulePattern,
			DurationSeconds:  90,
			PointsPerCorrect: 15,
			Thresholds:       Thresholds{40, 80, 120},
			ChoiceCount:      4,
			NewProblemOnMiss: true,
		},
		{
			ID:               WhatTimeIsIt,
			Name:             "What Time Is It?",
			Rule:             RuleClock,
			DurationSeconds:  80,
			PointsPerCorrect: 15,
			Thresholds:       Thresholds{30, 60, 90},
			ChoiceCount:      4,
			NewProblemOnMiss: true,
		},
		{
			ID:               ShapeBuilder,
			Name:             "Shape Builder",
			Rule:             RuleShapes,
			PointsPerCorrect: 100,
			Thresholds:       Thresholds{100, 200, 300},
			ChoiceCount:      9,
			GoalCount:        3,
		},
	}
}
