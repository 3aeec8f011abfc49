package arenatest

import (
	"testing"

	"duelgrid.gg/internal/protocol"
)

// While staggered an actor cannot start an attack or parry; once the
// stagger expires admission works again.
func TestStagger_BlocksAdmissionUntilExpiry(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	h.StepUntilTick(10)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})
	h.StepUntilTick(16)
	h.StepNoop() // parry succeeds, attacker staggered for 45 ticks

	stag := h.LastObs(attacker).Self.Combat.StaggerRemaining
	if stag == 0 {
		t.Fatalf("attacker not staggered after successful parry")
	}

	obs := h.Act(attacker, protocol.IntentReq{ID: "i2", Type: protocol.IntentAttack, Target: defender})
	if obs.Self.Combat.AttackPhase != "" {
		t.Fatalf("staggered actor started an attack")
	}
	results := h.EventsOfType(attacker, protocol.EventActionResult)
	if len(results) != 1 {
		t.Fatalf("ACTION_RESULT events = %d, want 1", len(results))
	}
	if code, _ := results[0]["code"].(string); code != protocol.ErrStaggered {
		t.Fatalf("code = %q, want %q", code, protocol.ErrStaggered)
	}

	// The stagger counts down and clears; 45 ticks from tick 16 means
	// tick 61 is the first with no stagger.
	h.StepUntilTick(61)
	h.StepNoop()
	if got := h.LastObs(attacker).Self.Combat.StaggerRemaining; got != 0 {
		t.Fatalf("stagger remaining at tick 61 = %d, want 0", got)
	}

	obs = h.Act(attacker, protocol.IntentReq{ID: "i3", Type: protocol.IntentAttack, Target: defender})
	if obs.Self.Combat.AttackPhase != "WINDUP" {
		t.Fatalf("attack after stagger expiry not admitted: %+v", obs.Self.Combat)
	}
}

// A parried attack yields no damage: the attack record is removed in the
// same tick the parry resolves, before any HITBOX tick is reached.
func TestStagger_PreemptedAttackNeverHits(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	h.StepUntilTick(10)
	h.Act(defender, protocol.IntentReq{ID: "p1", Type: protocol.IntentParry, Target: attacker})

	damage := 0
	for h.A.CurrentTick() <= 44 {
		h.StepNoop()
		damage += len(h.EventsOfType(defender, protocol.EventDamage))
	}
	if damage != 0 {
		t.Fatalf("parried attack still dealt damage")
	}
	if hp := h.LastObs(defender).Self.HP; hp != 20 {
		t.Fatalf("defender hp = %d, want 20", hp)
	}
}

// Weapon cooldown arms when the attack completes and rejects a new attack
// until it runs out.
func TestCooldown_GatesNextAttack(t *testing.T) {
	h := NewHarness(t, testConfig(1), testCatalogs())
	attacker, defender := duelists(h)

	h.Act(attacker, protocol.IntentReq{ID: "i1", Type: protocol.IntentAttack, Target: defender})
	h.StepUntilTick(45)

	obs := h.Act(attacker, protocol.IntentReq{ID: "i2", Type: protocol.IntentAttack, Target: defender})
	if obs.Self.Combat.AttackPhase != "" {
		t.Fatalf("attack admitted while on cooldown")
	}
	results := h.EventsOfType(attacker, protocol.EventActionResult)
	if len(results) != 1 {
		t.Fatalf("ACTION_RESULT events = %d, want 1", len(results))
	}
	if code, _ := results[0]["code"].(string); code != protocol.ErrCooldown {
		t.Fatalf("code = %q, want %q", code, protocol.ErrCooldown)
	}

	// Cooldown armed at tick 44 runs out 30 ticks later.
	h.StepUntilTick(75)
	obs = h.Act(attacker, protocol.IntentReq{ID: "i3", Type: protocol.IntentAttack, Target: defender})
	if obs.Self.Combat.AttackPhase != "WINDUP" {
		t.Fatalf("attack after cooldown not admitted: %+v", obs.Self.Combat)
	}
}
