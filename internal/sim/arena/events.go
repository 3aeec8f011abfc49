package arena

import "duelgrid.gg/internal/protocol"

// Event constructors. Every event carries the tick it was emitted on so
// presentation layers can order them without extra bookkeeping.

func evAttackPhase(t uint64, actorID string, phase string) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventAttackPhase, "actor": actorID, "phase": phase}
}

func evDamage(t uint64, attacker, target string, amount int) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventDamage, "attacker": attacker, "target": target, "amount": amount}
}

func evParryResolved(t uint64, defender, attacker string, success bool) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventParryResolved, "defender": defender, "attacker": attacker, "success": success}
}

func evStagger(t uint64, actorID, source string, duration int) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventStagger, "actor": actorID, "source": source, "duration": duration}
}

func evWindupSeen(t uint64, observer, attacker string, remaining int) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventWindupSeen, "observer": observer, "attacker": attacker, "remaining": remaining}
}

func evDeath(t uint64, actorID, source string) protocol.Event {
	return protocol.Event{"t": t, "type": protocol.EventDeath, "actor": actorID, "source": source}
}

func actionResult(t uint64, ref string, ok bool, code, msg string) protocol.Event {
	ev := protocol.Event{"t": t, "type": protocol.EventActionResult, "ref": ref, "ok": ok}
	if code != "" {
		ev["code"] = code
	}
	if msg != "" {
		ev["message"] = msg
	}
	return ev
}
