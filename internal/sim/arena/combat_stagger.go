package arena

// Stagger countdown and attack preemption.

func (a *Arena) systemStagger(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Dead || ac.Stagger == nil {
			continue
		}
		ac.Stagger.Remaining--
		if ac.Stagger.Remaining <= 0 {
			ac.Stagger = nil
		}
	}
}

// applyStagger preempts the target's attack the same tick it lands: the
// attack record is removed immediately, with no further phase-change or hit
// events for that attack instance, and no new attack can be admitted while
// the stagger is live.
func (a *Arena) applyStagger(ac *Actor, source string, duration int, nowTick uint64) {
	if duration <= 0 {
		duration = 1
	}
	ac.Attack = nil
	ac.pending = nil
	ac.Stagger = &StaggerState{Remaining: duration, Source: source}

	ev := evStagger(nowTick, ac.ID, source, duration)
	ac.AddEvent(ev)
	if src := a.actors[source]; src != nil && src.ID != ac.ID {
		src.AddEvent(ev)
	}
}
