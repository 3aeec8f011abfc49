package arenatest

import (
	"testing"

	"duelgrid.gg/internal/protocol"
)

// Full longsword attack timeline: WINDUP at the accept tick, then
// PARRY_WINDOW, HITBOX, RECOVERY and IDLE at fixed offsets.
func TestAttack_PhaseTimeline(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	obs := h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	if obs.Tick != 2 {
		t.Fatalf("attack accepted at tick %d, want 2", obs.Tick)
	}
	if obs.Self.Combat.AttackPhase != "WINDUP" || obs.Self.Combat.AttackRemaining != 12 {
		t.Fatalf("combat obs after accept = %+v", obs.Self.Combat)
	}

	h.StepUntilTick(14)
	h.StepNoop() // executes tick 14
	if got := h.LastObs(attacker).Self.Combat.AttackPhase; got != "PARRY_WINDOW" {
		t.Fatalf("tick 14 phase = %q, want PARRY_WINDOW", got)
	}

	h.StepUntilTick(21)
	h.StepNoop()
	if got := h.LastObs(attacker).Self.Combat.AttackPhase; got != "HITBOX" {
		t.Fatalf("tick 21 phase = %q, want HITBOX", got)
	}

	h.StepUntilTick(32)
	h.StepNoop()
	if got := h.LastObs(attacker).Self.Combat.AttackPhase; got != "RECOVERY" {
		t.Fatalf("tick 32 phase = %q, want RECOVERY", got)
	}

	h.StepUntilTick(44)
	h.StepNoop()
	last := h.LastObs(attacker)
	if last.Self.Combat.AttackPhase != "" {
		t.Fatalf("tick 44 phase = %q, want idle", last.Self.Combat.AttackPhase)
	}
	if last.Self.Combat.CooldownTicks == 0 {
		t.Fatalf("cooldown not armed after recovery")
	}
	if len(h.EventsOfType(attacker, protocol.EventAttackPhase)) == 0 {
		t.Fatalf("no ATTACK_PHASE event on the idle transition tick")
	}
}

// A parry whose windup expires while the attacker is in PARRY_WINDOW
// succeeds and staggers the attacker, removing the attack outright.
func TestParry_CoincidenceSuccess(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	// Parry at tick 10 resolves at 16, inside the window [14, 21).
	h.StepUntilTick(10)
	obs := h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})
	if obs.Self.Combat.ParryPhase != "WINDUP" || obs.Self.Combat.ParryRemaining != 6 {
		t.Fatalf("parry obs after accept = %+v", obs.Self.Combat)
	}

	h.StepUntilTick(16)
	h.StepNoop() // executes tick 16, the resolution tick

	resolved := h.EventsOfType(defender, protocol.EventParryResolved)
	if len(resolved) != 1 {
		t.Fatalf("PARRY_RESOLVED events = %d, want 1", len(resolved))
	}
	if ok, _ := resolved[0]["success"].(bool); !ok {
		t.Fatalf("parry at resolution tick 16 failed, want success: %v", resolved[0])
	}
	if len(h.EventsOfType(attacker, protocol.EventStagger)) != 1 {
		t.Fatalf("no STAGGER event for the parried attacker")
	}

	atk := h.LastObs(attacker).Self.Combat
	if atk.AttackPhase != "" {
		t.Fatalf("attack survived a successful parry: %+v", atk)
	}
	if atk.StaggerRemaining == 0 {
		t.Fatalf("attacker not staggered after successful parry")
	}

	// The defender is committed to recovery and stays vulnerable there.
	if h.LastObs(defender).Self.Combat.ParryPhase != "RECOVERY" {
		t.Fatalf("defender not in parry recovery after resolution")
	}
}

// A parry resolving one phase later, during HITBOX, fails: near misses in
// the wrong direction are never rewarded.
func TestParry_CoincidenceFailureLate(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	// Parry at tick 17 resolves at 23, inside HITBOX [21, 32).
	h.StepUntilTick(17)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})

	h.StepUntilTick(23)
	h.StepNoop()

	resolved := h.EventsOfType(defender, protocol.EventParryResolved)
	if len(resolved) != 1 {
		t.Fatalf("PARRY_RESOLVED events = %d, want 1", len(resolved))
	}
	if ok, _ := resolved[0]["success"].(bool); ok {
		t.Fatalf("late parry succeeded, want failure")
	}
	if h.LastObs(attacker).Self.Combat.StaggerRemaining != 0 {
		t.Fatalf("failed parry staggered the attacker")
	}
	if h.LastObs(attacker).Self.Combat.AttackPhase != "HITBOX" {
		t.Fatalf("failed parry disturbed the attack record")
	}
}

// A parry resolving before the window opens fails the same way.
func TestParry_CoincidenceFailureEarly(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	// Parry at tick 4 resolves at 10, still inside WINDUP.
	h.StepUntilTick(4)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})

	h.StepUntilTick(10)
	h.StepNoop()

	resolved := h.EventsOfType(defender, protocol.EventParryResolved)
	if len(resolved) != 1 {
		t.Fatalf("PARRY_RESOLVED events = %d, want 1", len(resolved))
	}
	if ok, _ := resolved[0]["success"].(bool); ok {
		t.Fatalf("early parry succeeded, want failure")
	}
}

// The coincidence check re-resolves the attacker by id at resolution time:
// if the attacker died mid-parry the check sees no live attack and fails,
// with no stale-reference effects.
func TestParry_AttackerDiedBeforeResolution(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.StepUntilTick(4)
	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})

	// Parry at tick 12 would resolve at 18, inside the window [16, 23),
	// had the attacker survived.
	h.StepUntilTick(12)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})

	h.A.DebugKill(attacker)

	h.StepUntilTick(18)
	h.StepNoop()

	resolved := h.EventsOfType(defender, protocol.EventParryResolved)
	if len(resolved) != 1 {
		t.Fatalf("PARRY_RESOLVED events = %d, want 1", len(resolved))
	}
	if ok, _ := resolved[0]["success"].(bool); ok {
		t.Fatalf("parry against a dead attacker succeeded")
	}
}
