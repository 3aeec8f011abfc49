package arenatest

import (
	"testing"

	"duelgrid.gg/internal/protocol"
	"duelgrid.gg/internal/sim/arena"
)

// One attack instance lands at most one hit, no matter how many HITBOX
// ticks the target spends inside the swing.
func TestHit_AtMostOncePerAttack(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	damage := 0
	for h.A.CurrentTick() <= 44 {
		h.StepNoop()
		damage += len(h.EventsOfType(defender, protocol.EventDamage))
	}
	if damage != 1 {
		t.Fatalf("DAMAGE events across the whole attack = %d, want 1", damage)
	}
	if hp := h.LastObs(defender).Self.HP; hp != 14 {
		t.Fatalf("defender hp = %d, want 14", hp)
	}
}

// A target outside the swing cone during HITBOX is never hit, even in reach.
func TestHit_RequiresFacingCone(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker := h.Join(JoinOpts{
		Name: "red", Faction: "RED", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 0, Y: 0}, Yaw: 0,
	})
	// In reach but behind the attacker once the swing starts.
	defender := h.Join(JoinOpts{
		Name: "blue", Faction: "BLUE", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 1.5, Y: 0}, Yaw: 180,
	})

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	h.A.DebugActor(attacker).Yaw = 180 // turn away mid-windup

	damage := 0
	for h.A.CurrentTick() <= 44 {
		h.StepNoop()
		damage += len(h.EventsOfType(defender, protocol.EventDamage))
	}
	if damage != 0 {
		t.Fatalf("DAMAGE events with the target outside the cone = %d, want 0", damage)
	}
}

// Death removes the victim from combat the same tick: records cleared, no
// further events, and the actor is gone from the arena afterwards.
func TestHit_DeathPreemptsCombat(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.A.DebugActor(defender).HP = 3

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	// Give the victim a live parry so the preemption has something to
	// clear; started at 16 it is still winding up when the hit lands.
	h.StepUntilTick(16)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})

	h.StepUntilTick(21)
	h.StepNoop() // the hit lands at tick 21 and kills outright

	deaths := h.EventsOfType(defender, protocol.EventDeath)
	if len(deaths) != 1 {
		t.Fatalf("DEATH events = %d, want 1", len(deaths))
	}
	if len(h.EventsOfType(attacker, protocol.EventDeath)) != 1 {
		t.Fatalf("killer did not receive the DEATH event")
	}
	if h.A.DebugActor(defender) != nil {
		t.Fatalf("dead actor still present after its final tick")
	}
}

// Admission preconditions reject out-of-reach and friendly targets with
// result codes; no attack record is created.
func TestAttack_AdmissionPreconditions(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker := h.Join(JoinOpts{
		Name: "red", Faction: "RED", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 0, Y: 0}, Yaw: 0,
	})
	far := h.Join(JoinOpts{
		Name: "blue", Faction: "BLUE", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 10, Y: 0}, Yaw: 180,
	})
	friend := h.Join(JoinOpts{
		Name: "red2", Faction: "RED", Weapon: "LONGSWORD",
		Pos: arena.Vec2{X: 1, Y: 0}, Yaw: 180,
	})

	obs := h.Act(attacker,
		protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: far},
		protocol.IntentReq{ID: "i2", Type: protocol.IntentAttack, Target: friend},
		protocol.IntentReq{ID: "i3", Type: protocol.IntentAttack, Target: "A999"},
	)
	if obs.Self.Combat.AttackPhase != "" {
		t.Fatalf("rejected intents still created an attack: %+v", obs.Self.Combat)
	}

	codes := map[string]string{}
	for _, ev := range h.EventsOfType(attacker, protocol.EventActionResult) {
		ref, _ := ev["ref"].(string)
		code, _ := ev["code"].(string)
		codes[ref] = code
	}
	if codes["i1"] != protocol.ErrRange {
		t.Fatalf("i1 code = %q, want %q", codes["i1"], protocol.ErrRange)
	}
	if codes["i2"] != protocol.ErrInvalidTarget {
		t.Fatalf("i2 code = %q, want %q", codes["i2"], protocol.ErrInvalidTarget)
	}
	if codes["i3"] != protocol.ErrInvalidTarget {
		t.Fatalf("i3 code = %q, want %q", codes["i3"], protocol.ErrInvalidTarget)
	}
}

// ACT messages older than the acceptance window are rejected whole.
func TestAct_StaleTickRejected(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.StepUntilTick(10)
	obs := h.ActAt(attacker, 5, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	if obs.Self.Combat.AttackPhase != "" {
		t.Fatalf("stale ACT still created an attack")
	}

	results := h.EventsOfType(attacker, protocol.EventActionResult)
	if len(results) != 1 {
		t.Fatalf("ACTION_RESULT events = %d, want 1", len(results))
	}
	if code, _ := results[0]["code"].(string); code != protocol.ErrStale {
		t.Fatalf("code = %q, want %q", code, protocol.ErrStale)
	}
}
