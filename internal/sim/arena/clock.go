package arena

// The simulation clock is a bare uint64 advanced once per step by the arena
// loop. Cadences are named sub-schedules gated on tick % divisor; because
// the check is pure modular arithmetic it stays correct when the counter
// wraps (0 % divisor == 0 fires at the wrap boundary like any other
// multiple). Nothing here reads wall-clock time.

// Cadence names, in their fixed execution order.
const (
	cadenceFast       = "fast"
	cadenceCombat     = "combat"
	cadencePerception = "perception"
)

// cadenceDue reports whether a cadence with the given divisor fires on tick.
func cadenceDue(tick, divisor uint64) bool {
	if divisor == 0 {
		return false
	}
	return tick%divisor == 0
}

type system struct {
	name string
	run  func(now uint64)
}

type cadence struct {
	name    string
	divisor uint64
	systems []system
}

// schedule runs registered cadences in registration order; within a cadence,
// systems run in registration order. Both orders are fixed at construction
// so two arenas with the same config dispatch identically.
type schedule struct {
	cadences []cadence
}

func (s *schedule) addCadence(name string, divisor uint64) {
	s.cadences = append(s.cadences, cadence{name: name, divisor: divisor})
}

func (s *schedule) addSystem(cadenceName, sysName string, run func(now uint64)) {
	for i := range s.cadences {
		if s.cadences[i].name == cadenceName {
			s.cadences[i].systems = append(s.cadences[i].systems, system{name: sysName, run: run})
			return
		}
	}
	panic("arena: unknown cadence " + cadenceName)
}

func (s *schedule) runDue(tick uint64) {
	for i := range s.cadences {
		c := &s.cadences[i]
		if !cadenceDue(tick, c.divisor) {
			continue
		}
		for _, sys := range c.systems {
			sys.run(tick)
		}
	}
}
