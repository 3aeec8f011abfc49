package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	ArenaID string `json:"arena_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 captures everything needed to resume the combat simulation
// deterministically: the arena parameters, the actors with their live
// combat records, and the id counter. Transport-level state (resume
// tokens, client channels) is deliberately excluded.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed       int64   `json:"seed"`
	TickRateHz int     `json:"tick_rate_hz"`
	BoundaryR  float64 `json:"boundary_r"`

	CombatEveryTicks     uint64 `json:"combat_every_ticks"`
	PerceptionEveryTicks uint64 `json:"perception_every_ticks"`

	ReactionMinTicks  int     `json:"reaction_min_ticks,omitempty"`
	ReactionMaxTicks  int     `json:"reaction_max_ticks,omitempty"`
	PerceptionRange   float64 `json:"perception_range,omitempty"`
	FOVDegrees        float64 `json:"fov_degrees,omitempty"`
	FacingConeDegrees float64 `json:"facing_cone_degrees,omitempty"`

	ActWindowTicks uint64 `json:"act_window_ticks,omitempty"`
	ActMax         int    `json:"act_max,omitempty"`

	SnapshotEveryTicks uint64 `json:"snapshot_every_ticks,omitempty"`

	Actors []ActorV1 `json:"actors"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextActor uint64 `json:"next_actor"`
}

type ActorV1 struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Faction string `json:"faction"`
	NPC     bool   `json:"npc,omitempty"`

	Pos [2]float64 `json:"pos"`
	Yaw float64    `json:"yaw"`
	HP  int        `json:"hp"`

	Weapon     string  `json:"weapon"`
	Aggression float64 `json:"aggression,omitempty"`
	ParrySkill float64 `json:"parry_skill,omitempty"`

	Cooldown int `json:"cooldown,omitempty"`

	Attack  *AttackV1  `json:"attack,omitempty"`
	Parry   *ParryV1   `json:"parry,omitempty"`
	Stagger *StaggerV1 `json:"stagger,omitempty"`

	PendingParry *PendingParryV1 `json:"pending_parry,omitempty"`

	Visible []string `json:"visible,omitempty"`

	RateWindows map[string]RateWindowV1 `json:"rate_windows,omitempty"`
}

type AttackV1 struct {
	Weapon      string `json:"weapon"`
	Phase       string `json:"phase"`
	Remaining   int    `json:"remaining"`
	HasHit      bool   `json:"has_hit,omitempty"`
	StartedTick uint64 `json:"started_tick"`
}

type ParryV1 struct {
	Against     string `json:"against"`
	Phase       string `json:"phase"`
	Remaining   int    `json:"remaining"`
	StartedTick uint64 `json:"started_tick"`
}

type StaggerV1 struct {
	Remaining int    `json:"remaining"`
	Source    string `json:"source,omitempty"`
}

type PendingParryV1 struct {
	DelayTicks int    `json:"delay_ticks"`
	Target     string `json:"target"`
}

type RateWindowV1 struct {
	StartTick uint64 `json:"start_tick"`
	Count     int    `json:"count"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	// Human-greppable header line, then the gob body.
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Skip the header line; the gob body carries the header too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
