package arena

import (
	"encoding/json"

	"duelgrid.gg/internal/protocol"
)

func (a *Arena) buildObs(ac *Actor, nowTick uint64) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		ActorID:         ac.ID,
		Self: protocol.SelfObs{
			Pos:     [2]float64{ac.Pos.X, ac.Pos.Y},
			Yaw:     ac.Yaw,
			HP:      ac.HP,
			Faction: ac.Faction,
			Weapon:  ac.Weapon,
			Combat:  combatObs(ac),
		},
		Entities: []protocol.EntityObs{},
		Events:   ac.Events,
	}
	ac.Events = nil

	for _, oid := range a.sortedActorIDs() {
		if oid == ac.ID {
			continue
		}
		other := a.actors[oid]
		if other.Dead {
			continue
		}
		hostile := ac.Hostile(other)
		if hostile && !ac.Visible[oid] {
			continue
		}
		if !hostile && Dist(ac.Pos, other.Pos) > a.cfg.PerceptionRange {
			continue
		}
		ent := protocol.EntityObs{
			ID:      oid,
			Pos:     [2]float64{other.Pos.X, other.Pos.Y},
			Yaw:     other.Yaw,
			Faction: other.Faction,
			Hostile: hostile,
		}
		if other.Attack != nil {
			ent.AttackPhase = string(other.Attack.Phase)
		}
		obs.Entities = append(obs.Entities, ent)
	}

	return obs
}

func combatObs(ac *Actor) protocol.CombatObs {
	var c protocol.CombatObs
	if ac.Attack != nil {
		c.AttackPhase = string(ac.Attack.Phase)
		c.AttackRemaining = ac.Attack.Remaining
	}
	if ac.Parry != nil {
		c.ParryPhase = string(ac.Parry.Phase)
		c.ParryRemaining = ac.Parry.Remaining
	}
	if ac.Stagger != nil {
		c.StaggerRemaining = ac.Stagger.Remaining
	}
	c.CooldownTicks = ac.Cooldown
	return c
}

func (a *Arena) sendObs(ac *Actor, cl *clientState, nowTick uint64) {
	obs := a.buildObs(ac, nowTick)
	data, err := json.Marshal(obs)
	if err != nil {
		return
	}
	sendLatest(cl.Out, data)
}

// sendLatest never blocks the arena loop: when the client's channel is
// full the oldest queued frame is dropped to make room for the new one.
// A slow reader sees gaps, never stale backlog.
func sendLatest(out chan []byte, data []byte) {
	for {
		select {
		case out <- data:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
