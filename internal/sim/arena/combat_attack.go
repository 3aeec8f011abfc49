package arena

// Attack phase machine. Runs on the fast cadence, before the parry
// resolver, so a parry closing this tick observes this tick's
// post-transition attacker phase.

func (a *Arena) systemAttacks(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Dead || ac.Attack == nil {
			continue
		}
		a.advanceAttack(ac, nowTick)
	}
}

func (a *Arena) advanceAttack(ac *Actor, nowTick uint64) {
	st := ac.Attack
	// The record counts full ticks after its creation tick, so the first
	// decrement happens one tick later.
	if st.StartedTick == nowTick {
		return
	}

	if st.Remaining > 0 {
		st.Remaining--
	}
	// Zero-length sub-phases (e.g. parry_window_fraction of 0 or 1)
	// collapse in the same tick.
	for ac.Attack != nil && ac.Attack.Remaining == 0 {
		a.transitionAttack(ac, nowTick)
	}
	if ac.Attack != nil && ac.Attack.Phase == AttackHitbox {
		a.tryHit(ac, nowTick)
	}
}

func (a *Arena) transitionAttack(ac *Actor, nowTick uint64) {
	st := ac.Attack
	w, ok := a.weapon(st.Weapon)
	if !ok {
		// Profile disappeared mid-attack can only happen on a corrupted
		// catalog; drop the record rather than loop forever.
		ac.Attack = nil
		return
	}

	switch st.Phase {
	case AttackWindup:
		st.Phase = AttackParryWindow
		st.Remaining = w.ParryWindowTicks()
		ac.AddEvent(evAttackPhase(nowTick, ac.ID, string(AttackParryWindow)))
	case AttackParryWindow:
		st.Phase = AttackHitbox
		st.Remaining = w.HitboxTicks()
		st.HasHit = false
		ac.AddEvent(evAttackPhase(nowTick, ac.ID, string(AttackHitbox)))
	case AttackHitbox:
		st.Phase = AttackRecovery
		st.Remaining = w.RecoveryTicks
		ac.AddEvent(evAttackPhase(nowTick, ac.ID, string(AttackRecovery)))
	case AttackRecovery:
		ac.Attack = nil
		ac.Cooldown = w.CooldownTicks
		ac.AddEvent(evAttackPhase(nowTick, ac.ID, "IDLE"))
	}
}

// tryHit applies the area hit check for one HITBOX tick: any hostile actor
// inside the weapon's reach and swing cone may be hit. HasHit guarantees at
// most one damage event per attack instance even though the check runs on
// every tick of the phase.
func (a *Arena) tryHit(ac *Actor, nowTick uint64) {
	st := ac.Attack
	if st.HasHit {
		return
	}
	w, ok := a.weapon(st.Weapon)
	if !ok {
		return
	}
	for _, id := range a.sortedActorIDs() {
		if id == ac.ID {
			continue
		}
		tgt := a.actors[id]
		if tgt.Dead || !ac.Hostile(tgt) {
			continue
		}
		if Dist(ac.Pos, tgt.Pos) > w.Range {
			continue
		}
		if !withinCone(ac.Pos, ac.Yaw, tgt.Pos, a.cfg.FacingConeDegrees) {
			continue
		}
		st.HasHit = true
		ev := evDamage(nowTick, ac.ID, tgt.ID, w.Damage)
		ac.AddEvent(ev)
		tgt.AddEvent(ev)
		tgt.HP -= w.Damage
		if tgt.HP <= 0 {
			a.kill(tgt, ac.ID, nowTick)
		}
		return
	}
}

// kill removes the actor from combat the same tick: all live records are
// cleared so no further phase-change, hit or parry events can fire for it.
func (a *Arena) kill(ac *Actor, source string, nowTick uint64) {
	ac.clearCombat()
	ac.Dead = true
	ac.HP = 0
	ev := evDeath(nowTick, ac.ID, source)
	ac.AddEvent(ev)
	if src := a.actors[source]; src != nil && src.ID != ac.ID {
		src.AddEvent(ev)
	}
}

func (a *Arena) systemCooldowns(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Cooldown > 0 {
			ac.Cooldown--
		}
	}
}
