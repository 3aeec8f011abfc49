package arena

import (
	"duelgrid.gg/internal/protocol"
)

// applyAct validates and applies one ACT message at the tick boundary.
// Failed preconditions never raise errors: the intent is discarded and an
// ACTION_RESULT event with a code is queued for the issuing actor.
func (a *Arena) applyAct(ac *Actor, act protocol.ActMsg, nowTick uint64) {
	// Staleness check: accept only [now-2, now]. Wrapping subtraction keeps
	// this correct across counter wraparound.
	if nowTick-act.Tick > 2 {
		ac.AddEvent(actionResult(nowTick, "ACT", false, protocol.ErrStale, "act tick out of range"))
		return
	}

	for _, intent := range act.Intents {
		if !ac.RateLimitAllow("ACT", nowTick, a.cfg.ActWindowTicks, a.cfg.ActMax) {
			ac.AddEvent(actionResult(nowTick, intent.ID, false, protocol.ErrRateLimit, "too many intents"))
			continue
		}
		switch intent.Type {
		case protocol.IntentAttack:
			a.acceptAttack(ac, intent.ID, intent.Target, nowTick)
		case protocol.IntentParry:
			a.acceptParry(ac, intent.ID, intent.Target, nowTick)
		default:
			ac.AddEvent(actionResult(nowTick, intent.ID, false, protocol.ErrBadRequest, "unknown intent type"))
		}
	}
}

// acceptAttack runs the attack admission preconditions and, if they pass,
// creates the windup record. ref may be empty for internally generated
// intents (the decision maker), in which case no ACTION_RESULT is queued.
func (a *Arena) acceptAttack(ac *Actor, ref, target string, nowTick uint64) bool {
	fail := func(code, msg string) bool {
		if ref != "" {
			ac.AddEvent(actionResult(nowTick, ref, false, code, msg))
		}
		return false
	}

	if ac.Stagger != nil {
		return fail(protocol.ErrStaggered, "staggered")
	}
	if ac.Attack != nil || ac.Parry != nil {
		return fail(protocol.ErrBusy, "already committed")
	}
	if ac.Cooldown > 0 {
		return fail(protocol.ErrCooldown, "weapon on cooldown")
	}
	w, ok := a.weapon(ac.Weapon)
	if !ok {
		return fail(protocol.ErrInternal, "unknown weapon profile")
	}
	tgt := a.actors[target]
	if tgt == nil || tgt.Dead {
		return fail(protocol.ErrInvalidTarget, "target not found")
	}
	if !ac.Hostile(tgt) {
		return fail(protocol.ErrInvalidTarget, "target not hostile")
	}
	if Dist(ac.Pos, tgt.Pos) > w.Range {
		return fail(protocol.ErrRange, "target out of range")
	}

	ac.Attack = &AttackState{
		Weapon:      ac.Weapon,
		Phase:       AttackWindup,
		Remaining:   w.WindupTicks,
		StartedTick: nowTick,
	}
	ac.AddEvent(evAttackPhase(nowTick, ac.ID, string(AttackWindup)))
	if ref != "" {
		ac.AddEvent(actionResult(nowTick, ref, true, "", "ok"))
	}
	return true
}

// acceptParry runs the parry admission preconditions and creates the parry
// windup record. The target id is recorded for events and the later
// coincidence lookup; its combat state is deliberately not inspected here.
func (a *Arena) acceptParry(ac *Actor, ref, target string, nowTick uint64) bool {
	fail := func(code, msg string) bool {
		if ref != "" {
			ac.AddEvent(actionResult(nowTick, ref, false, code, msg))
		}
		return false
	}

	if ac.Stagger != nil {
		return fail(protocol.ErrStaggered, "staggered")
	}
	if ac.Attack != nil || ac.Parry != nil {
		return fail(protocol.ErrBusy, "already committed")
	}
	w, ok := a.weapon(ac.Weapon)
	if !ok {
		return fail(protocol.ErrInternal, "unknown weapon profile")
	}
	tgt := a.actors[target]
	if tgt == nil || tgt.Dead {
		return fail(protocol.ErrInvalidTarget, "target not found")
	}

	ac.Parry = &ParryState{
		Against:     target,
		Phase:       ParryWindup,
		Remaining:   w.ParryWindupTicks,
		StartedTick: nowTick,
	}
	if ref != "" {
		ac.AddEvent(actionResult(nowTick, ref, true, "", "ok"))
	}
	return true
}
