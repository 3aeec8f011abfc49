package arena

// Perception provider. Runs on the slow cadence and rebuilds each actor's
// visible-hostiles set from range and field of view. The combat systems
// only ever read these sets; between rebuilds they are a snapshot, which
// is exactly the staleness a vision model wants (an actor that just
// stepped behind you is still "seen" until the next perception pass).

func (a *Arena) systemPerception(nowTick uint64) {
	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		if ac.Dead {
			continue
		}
		visible := map[string]bool{}
		for _, oid := range a.sortedActorIDs() {
			if oid == id {
				continue
			}
			other := a.actors[oid]
			if other.Dead || !ac.Hostile(other) {
				continue
			}
			if Dist(ac.Pos, other.Pos) > a.cfg.PerceptionRange {
				continue
			}
			if !withinCone(ac.Pos, ac.Yaw, other.Pos, a.cfg.FOVDegrees) {
				continue
			}
			visible[oid] = true
		}
		ac.Visible = visible
	}
}
