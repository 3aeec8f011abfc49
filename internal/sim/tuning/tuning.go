package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int     `yaml:"tick_rate_hz"`
	BoundaryR          float64 `yaml:"boundary_r"`
	SnapshotEveryTicks int     `yaml:"snapshot_every_ticks"`

	Cadence Cadence `yaml:"cadence"`
	AI      AI      `yaml:"ai"`

	RateLimits RateLimits `yaml:"rate_limits"`

	NPCs []NPCSpawn `yaml:"npcs"`

	// Digest of the raw tuning file; set by Load, empty for Defaults.
	Digest string `yaml:"-"`
}

type Cadence struct {
	CombatEveryTicks     int `yaml:"combat_every_ticks"`
	PerceptionEveryTicks int `yaml:"perception_every_ticks"`
}

type AI struct {
	ReactionMinTicks  int     `yaml:"reaction_min_ticks"`
	ReactionMaxTicks  int     `yaml:"reaction_max_ticks"`
	PerceptionRange   float64 `yaml:"perception_range"`
	FOVDegrees        float64 `yaml:"fov_degrees"`
	FacingConeDegrees float64 `yaml:"facing_cone_degrees"`
}

type RateLimits struct {
	ActWindowTicks int `yaml:"act_window_ticks"`
	ActMax         int `yaml:"act_max"`
}

type NPCSpawn struct {
	Name       string  `yaml:"name"`
	Faction    string  `yaml:"faction"`
	Weapon     string  `yaml:"weapon"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Yaw        float64 `yaml:"yaw"`
	Aggression float64 `yaml:"aggression"`
	ParrySkill float64 `yaml:"parry_skill"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	t.Digest = hex.EncodeToString(sum[:])
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         60,
		BoundaryR:          64,
		SnapshotEveryTicks: 3600,
		Cadence: Cadence{
			CombatEveryTicks:     6,
			PerceptionEveryTicks: 20,
		},
		AI: AI{
			ReactionMinTicks:  4,
			ReactionMaxTicks:  12,
			PerceptionRange:   16,
			FOVDegrees:        180,
			FacingConeDegrees: 60,
		},
		RateLimits: RateLimits{
			ActWindowTicks: 60,
			ActMax:         20,
		},
	}
}

func (t Tuning) validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive")
	}
	if t.Cadence.CombatEveryTicks <= 0 || t.Cadence.PerceptionEveryTicks <= 0 {
		return fmt.Errorf("cadence divisors must be positive")
	}
	if t.AI.ReactionMinTicks < 0 || t.AI.ReactionMaxTicks < t.AI.ReactionMinTicks {
		return fmt.Errorf("bad reaction window")
	}
	if t.BoundaryR <= 0 {
		return fmt.Errorf("boundary_r must be positive")
	}
	return nil
}
