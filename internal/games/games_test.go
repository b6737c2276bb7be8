package games

import (
	"os"
	"path/filepath"
	"testing"

	"mathclash/internal/models"
)

func TestThresholdsStars(t *testing.T) {
	th := Thresholds{30, 60, 100}

	tests := []struct {
		score int
		want  int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{59, 1},
		{60, 2},
		{99, 2},
		{100, 3},
		{1000, 3},
	}

	for _, tt := range tests {
		if got := th.Stars(tt.score); got != tt.want {
			t.Errorf("Stars(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestStarsForIsMonotonic(t *testing.T) {
	for _, cfg := range DefaultCatalog().All() {
		t.Run(cfg.ID, func(t *testing.T) {
			prev := 0
			for score := 0; score <= 1000; score++ {
				stars := StarsFor(cfg, score)
				if stars < prev {
					t.Fatalf("stars dropped from %d to %d at score %d", prev, stars, score)
				}
				if stars != StarsFor(cfg, score) {
					t.Fatalf("StarsFor not deterministic at score %d", score)
				}
				prev = stars
			}
			if prev != MaxStars {
				t.Errorf("expected %d stars at score 1000, got %d", MaxStars, prev)
			}
		})
	}
}

func TestStarsForEndUsesGoalTable(t *testing.T) {
	cfg, ok := DefaultCatalog().Get(AdditionMaze)
	if !ok {
		t.Fatal("maze game missing from catalog")
	}

	if got := StarsForEnd(cfg, models.EndTimeout, 150); got != 3 {
		t.Errorf("timeout at 150 = %d stars, want 3", got)
	}
	if got := StarsForEnd(cfg, models.EndGoalReached, 150); got != 2 {
		t.Errorf("goal at 150 = %d stars, want 2", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"ascending", Thresholds{10, 20, 30}, false},
		{"equal steps", Thresholds{10, 10, 10}, false},
		{"descending", Thresholds{30, 20, 10}, true},
		{"negative", Thresholds{-1, 20, 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPointsFor(t *testing.T) {
	catalog := DefaultCatalog()

	hunt, _ := catalog.Get(NumberHunt)
	if got := PointsFor(hunt, 1, nil); got != 100 {
		t.Errorf("number hunt level 1 = %d, want 100", got)
	}
	if got := PointsFor(hunt, 3, nil); got != 300 {
		t.Errorf("number hunt level 3 = %d, want 300", got)
	}

	patterns, _ := catalog.Get(NumberPatterns)
	if got := PointsFor(patterns, 1, &models.Problem{Bonus: 10}); got != 25 {
		t.Errorf("multiplication pattern = %d, want 25", got)
	}
}

func TestChoicesFor(t *testing.T) {
	hunt, _ := DefaultCatalog().Get(NumberHunt)

	tests := []struct {
		level int
		want  int
	}{
		{1, 7},
		{2, 8},
		{4, 10},
		{9, 10},
	}
	for _, tt := range tests {
		if got := hunt.ChoicesFor(tt.level); got != tt.want {
			t.Errorf("ChoicesFor(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestDefaultCatalogHasSevenGames(t *testing.T) {
	all := DefaultCatalog().All()
	if len(all) != 7 {
		t.Fatalf("expected 7 games, got %d", len(all))
	}
	if all[0].ID != NumberHunt {
		t.Errorf("expected catalog to start with %s, got %s", NumberHunt, all[0].ID)
	}
}

func TestLoadCatalogOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	content := `[
		{"id": "caza-restas", "name": "Quick Subtraction", "rule": "subtraction",
		 "duration_seconds": 30, "lives": 5, "points_per_correct": 20,
		 "star_thresholds": [20, 40, 80], "choice_count": 4}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	cfg, ok := catalog.Get(SubtractionHunt)
	if !ok {
		t.Fatal("override missing")
	}
	if cfg.DurationSeconds != 30 || cfg.Lives != 5 {
		t.Errorf("override not applied: %+v", cfg)
	}
	if len(catalog.All()) != 7 {
		t.Errorf("override should replace, got %d games", len(catalog.All()))
	}
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	content := `[{"id": "broken", "rule": "subtraction", "duration_seconds": 30,
		"star_thresholds": [50, 40, 80], "choice_count": 4}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for descending thresholds")
	}
}
