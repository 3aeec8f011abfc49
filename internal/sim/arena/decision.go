package arena

// Combat decision maker for NPC actors. Consumes the detector's sightings
// in their deterministic emission order; every random draw goes through the
// arena's seeded generator, so two arenas with the same seed and inputs
// decide identically.

func (a *Arena) systemDecisions(nowTick uint64) {
	for _, s := range a.windupSeen {
		observer := a.actors[s.Observer]
		if observer == nil || observer.Dead || !observer.NPC {
			continue
		}
		// An actor already committed (or reacting) ignores new telegraphs.
		if observer.Stagger != nil || observer.Attack != nil || observer.Parry != nil || observer.pending != nil {
			continue
		}
		attacker := a.actors[s.Attacker]
		if attacker == nil || attacker.Dead || attacker.Attack == nil {
			continue
		}

		roll := a.rng.Float64()
		switch {
		case roll < observer.Stats.ParrySkill:
			a.scheduleParry(observer, attacker, s.Remaining, nowTick)
		case roll < observer.Stats.ParrySkill+observer.Stats.Aggression:
			// Counter-attack through the normal admission path; a failed
			// precondition just means the actor stays put.
			a.acceptAttack(observer, "", s.Attacker, nowTick)
		default:
			// Wait.
		}
	}
}

// scheduleParry picks a human-like reaction delay and clamps it so the
// parry windup still terminates inside the attacker's parry window. If
// even the earliest possible reaction would close the parry after the
// window, the option is discarded: a late parry is never emitted.
func (a *Arena) scheduleParry(observer, attacker *Actor, windupRemaining int, nowTick uint64) {
	dw, ok := a.weapon(observer.Weapon)
	if !ok {
		return
	}
	aw, ok := a.weapon(attacker.Attack.Weapon)
	if !ok {
		return
	}

	// The parry resolves parry_windup ticks after the intent fires. The
	// attacker's parry window spans [windup_end, windup_end + window).
	earliest := windupRemaining - dw.ParryWindupTicks
	latest := windupRemaining + aw.ParryWindowTicks() - 1 - dw.ParryWindupTicks
	if latest < 1 {
		return // cannot make the window from here
	}
	if earliest < 1 {
		earliest = 1
	}

	span := a.cfg.ReactionMaxTicks - a.cfg.ReactionMinTicks
	delay := a.cfg.ReactionMinTicks
	if span > 0 {
		delay += a.rng.Intn(span + 1)
	}
	if delay < earliest {
		delay = earliest
	}
	if delay > latest {
		delay = latest
	}

	observer.pending = &pendingParry{DelayTicks: delay, Target: attacker.ID}
}

// systemReactionDelays counts scheduled reactions down on the fast cadence
// and submits the parry intent when the delay expires. The intent goes
// through the same admission path as an external one; if the situation
// changed (stagger, death) it is silently discarded there.
func (a *Arena) systemReactionDelays(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Dead || ac.pending == nil {
			continue
		}
		ac.pending.DelayTicks--
		if ac.pending.DelayTicks > 0 {
			continue
		}
		target := ac.pending.Target
		ac.pending = nil
		a.acceptParry(ac, "", target, nowTick)
	}
}
