package arena

// Parry phase machine and the tick-exact coincidence check. Runs on the
// fast cadence after the attack resolver.

func (a *Arena) systemParries(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Dead || ac.Parry == nil {
			continue
		}
		a.advanceParry(ac, nowTick)
	}
}

func (a *Arena) advanceParry(ac *Actor, nowTick uint64) {
	st := ac.Parry
	if st.StartedTick == nowTick {
		return
	}

	if st.Remaining > 0 {
		st.Remaining--
	}
	if st.Remaining > 0 {
		return
	}

	switch st.Phase {
	case ParryWindup:
		a.resolveParry(ac, nowTick)
	case ParryRecovery:
		ac.Parry = nil
	}
}

// resolveParry performs the coincidence check exactly once, on the tick the
// defender's windup expires. The attacker's phase is re-resolved by a fresh
// id lookup into the actor table — never through a cached reference — so an
// attacker that died or got staggered in the interim simply has no live
// attack record and the parry fails cleanly.
func (a *Arena) resolveParry(defender *Actor, nowTick uint64) {
	st := defender.Parry
	attacker := a.actors[st.Against]

	success := attacker != nil && !attacker.Dead &&
		attacker.Attack != nil && attacker.Attack.Phase == AttackParryWindow

	ev := evParryResolved(nowTick, defender.ID, st.Against, success)
	defender.AddEvent(ev)
	if attacker != nil && !attacker.Dead {
		attacker.AddEvent(ev)
	}

	if success {
		w, ok := a.weapon(attacker.Attack.Weapon)
		duration := 0
		if ok {
			duration = w.StaggerTicks
		}
		a.applyStagger(attacker, defender.ID, duration, nowTick)
	}

	// Success or failure, the defender recovers through the same path and
	// stays vulnerable while doing so.
	dw, ok := a.weapon(defender.Weapon)
	recovery := 0
	if ok {
		recovery = dw.ParryRecoveryTicks
	}
	if recovery == 0 {
		defender.Parry = nil
		return
	}
	st.Phase = ParryRecovery
	st.Remaining = recovery
}
