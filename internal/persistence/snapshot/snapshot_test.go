package snapshot

import (
	"path/filepath"
	"testing"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "100.snap.zst")

	in := SnapshotV1{
		Header:               Header{Version: 1, ArenaID: "arena_1", Tick: 100},
		Seed:                 7,
		TickRateHz:           60,
		BoundaryR:            64,
		CombatEveryTicks:     6,
		PerceptionEveryTicks: 20,
		Actors: []ActorV1{
			{
				ID: "A1", Name: "red", Faction: "RED", Weapon: "LONGSWORD",
				Pos: [2]float64{1.5, -2}, Yaw: 90, HP: 14, Cooldown: 9,
				Attack: &AttackV1{Weapon: "LONGSWORD", Phase: "HITBOX", Remaining: 4, HasHit: true, StartedTick: 80},
			},
			{
				ID: "A2", Name: "npc", Faction: "BLUE", Weapon: "DAGGER", NPC: true,
				Pos: [2]float64{0, 0}, HP: 20, ParrySkill: 0.5,
				Stagger: &StaggerV1{Remaining: 12, Source: "A1"},
				Visible: []string{"A1"},
			},
		},
		Counters: CountersV1{NextActor: 2},
	}

	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if out.Header != in.Header {
		t.Fatalf("header = %+v, want %+v", out.Header, in.Header)
	}
	if len(out.Actors) != 2 {
		t.Fatalf("actors = %d, want 2", len(out.Actors))
	}
	a1 := out.Actors[0]
	if a1.Attack == nil || a1.Attack.Phase != "HITBOX" || !a1.Attack.HasHit {
		t.Fatalf("attack record lost: %+v", a1.Attack)
	}
	a2 := out.Actors[1]
	if a2.Stagger == nil || a2.Stagger.Remaining != 12 {
		t.Fatalf("stagger record lost: %+v", a2.Stagger)
	}
	if out.Counters.NextActor != 2 {
		t.Fatalf("counters = %+v", out.Counters)
	}
}

func TestReadSnapshot_MissingFile(t *testing.T) {
	if _, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
