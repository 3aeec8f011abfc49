package arena

// Windup detector. Runs on the combat cadence, after the fast-cadence
// resolvers, so it sees this tick's post-transition phases.

// windupSighting is the detector's output consumed by the decision maker
// in the same tick.
type windupSighting struct {
	Observer  string
	Attacker  string
	Remaining int
}

// systemWindupDetector turns "actor is winding up" into per-observer
// "windup visible" events. Three filters gate the event: the observer must
// be inside the weapon's reach, the attacker must be oriented toward the
// observer, and the observer must already be in the attacker's visible
// set. An observer behind the attacker or outside range never learns of
// the telegraph. Lookups are fresh per tick; an actor missing its spatial
// data is skipped this tick, never queued.
func (a *Arena) systemWindupDetector(nowTick uint64) {
	a.windupSeen = a.windupSeen[:0]

	for _, id := range a.sortedActorIDs() {
		attacker := a.actors[id]
		if attacker.Dead || attacker.Attack == nil || attacker.Attack.Phase != AttackWindup {
			continue
		}
		w, ok := a.weapon(attacker.Attack.Weapon)
		if !ok {
			continue
		}
		for _, oid := range a.sortedActorIDs() {
			if oid == id {
				continue
			}
			observer := a.actors[oid]
			if observer.Dead || !attacker.Hostile(observer) {
				continue
			}
			if Dist(attacker.Pos, observer.Pos) > w.Range {
				continue
			}
			if !withinCone(attacker.Pos, attacker.Yaw, observer.Pos, a.cfg.FacingConeDegrees) {
				continue
			}
			if !attacker.Visible[oid] {
				continue
			}
			sighting := windupSighting{
				Observer:  oid,
				Attacker:  id,
				Remaining: attacker.Attack.Remaining,
			}
			a.windupSeen = append(a.windupSeen, sighting)
			observer.AddEvent(evWindupSeen(nowTick, oid, id, attacker.Attack.Remaining))
		}
	}
}
