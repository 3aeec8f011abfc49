package arenatest

import (
	"testing"

	"duelgrid.gg/internal/protocol"
	"duelgrid.gg/internal/sim/arena"
)

func aiDuelists(h *Harness, stats arena.CombatStats, attackerWeapon string) (attacker, defender string) {
	attacker = h.Join(JoinOpts{
		Name: "red", Faction: "RED", Weapon: attackerWeapon,
		Pos: arena.Vec2{X: 0, Y: 0}, Yaw: 0,
	})
	defender = h.Join(JoinOpts{
		Name: "npc", Faction: "BLUE", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 1, Y: 0}, Yaw: 180,
		NPC: true, Stats: stats,
	})
	return attacker, defender
}

// The detector announces a telegraph only to observers that are in reach,
// in front of the attacker, and in the attacker's visible set.
func TestWindupDetector_EmitsSighting(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := aiDuelists(h, arena.CombatStats{}, "LONGSWORD")

	h.StepUntilTick(21) // perception pass at tick 20 fills the visible sets
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	h.StepUntilTick(24)
	h.StepNoop() // combat cadence tick

	seen := h.EventsOfType(defender, protocol.EventWindupSeen)
	if len(seen) != 1 {
		t.Fatalf("WINDUP_SEEN events at tick 24 = %d, want 1", len(seen))
	}
	if got, _ := seen[0]["attacker"].(string); got != attacker {
		t.Fatalf("sighting attacker = %q, want %q", got, attacker)
	}
	if len(h.EventsOfType(attacker, protocol.EventWindupSeen)) != 0 {
		t.Fatalf("attacker received its own telegraph")
	}
}

// Without perception data the telegraph stays invisible: an attacker whose
// visible set is empty produces no sightings no matter the geometry.
func TestWindupDetector_RequiresVisibleSet(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := aiDuelists(h, arena.CombatStats{}, "LONGSWORD")

	h.StepUntilTick(21)
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	h.A.DebugActor(attacker).Visible = map[string]bool{}

	h.StepUntilTick(24)
	h.StepNoop()

	if got := len(h.EventsOfType(defender, protocol.EventWindupSeen)); got != 0 {
		t.Fatalf("WINDUP_SEEN events without visibility = %d, want 0", got)
	}
}

// A parry-skilled NPC reacts to the telegraph with a delayed parry whose
// clamped reaction always closes inside the attacker's parry window.
func TestAI_ParryReactionLandsInWindow(t *testing.T) {
	h := NewHarness(t, testConfig(7), testCatalogs())
	attacker, defender := aiDuelists(h, arena.CombatStats{ParrySkill: 1}, "LONGSWORD")

	h.StepUntilTick(21)
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	var resolved []protocol.Event
	for h.A.CurrentTick() <= 40 {
		h.StepNoop()
		resolved = append(resolved, h.EventsOfType(defender, protocol.EventParryResolved)...)
	}
	if len(resolved) != 1 {
		t.Fatalf("PARRY_RESOLVED events = %d, want 1", len(resolved))
	}
	if ok, _ := resolved[0]["success"].(bool); !ok {
		t.Fatalf("NPC reaction parry missed the window: %v", resolved[0])
	}
	if h.LastObs(attacker).Self.Combat.StaggerRemaining == 0 {
		t.Fatalf("attacker not staggered by the NPC parry")
	}
}

// An aggressive NPC answers the telegraph with a counter-attack through
// the normal admission path.
func TestAI_CounterAttack(t *testing.T) {
	h := NewHarness(t, testConfig(7), testCatalogs())
	attacker, defender := aiDuelists(h, arena.CombatStats{Aggression: 1}, "LONGSWORD")

	h.StepUntilTick(21)
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	h.StepUntilTick(24)
	h.StepNoop() // decision tick

	if got := h.LastObs(defender).Self.Combat.AttackPhase; got != "WINDUP" {
		t.Fatalf("NPC combat phase after decision = %q, want WINDUP", got)
	}
}

// When even the earliest possible reaction would resolve after the window
// closes, the parry option is discarded: the engine never emits a parry it
// already knows is late.
func TestAI_LateParryDiscarded(t *testing.T) {
	h := NewHarness(t, testConfig(7), testCatalogs())
	// Dagger windup is short enough that a longsword parry scheduled at
	// the detector tick cannot make the window.
	attacker, defender := aiDuelists(h, arena.CombatStats{ParrySkill: 1}, "DAGGER")

	h.StepUntilTick(21)
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	var resolved []protocol.Event
	for h.A.CurrentTick() <= 45 {
		h.StepNoop()
		resolved = append(resolved, h.EventsOfType(defender, protocol.EventParryResolved)...)
	}
	if len(resolved) != 0 {
		t.Fatalf("discarded reaction still produced a parry resolution: %v", resolved)
	}
}
