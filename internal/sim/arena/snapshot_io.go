package arena

import (
	"fmt"
	"math/rand"
	"sort"

	"duelgrid.gg/internal/persistence/snapshot"
	"duelgrid.gg/internal/sim/catalogs"
)

const snapshotVersion = 1

// ExportSnapshot captures the resumable state at nowTick. Must be called
// from the arena loop goroutine (StepOnce callers included).
func (a *Arena) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshotVersion,
			ArenaID: a.cfg.ID,
			Tick:    nowTick,
		},
		Seed:                 a.cfg.Seed,
		TickRateHz:           a.cfg.TickRateHz,
		BoundaryR:            a.cfg.BoundaryR,
		CombatEveryTicks:     a.cfg.CombatEveryTicks,
		PerceptionEveryTicks: a.cfg.PerceptionEveryTicks,
		ReactionMinTicks:     a.cfg.ReactionMinTicks,
		ReactionMaxTicks:     a.cfg.ReactionMaxTicks,
		PerceptionRange:      a.cfg.PerceptionRange,
		FOVDegrees:           a.cfg.FOVDegrees,
		FacingConeDegrees:    a.cfg.FacingConeDegrees,
		ActWindowTicks:       a.cfg.ActWindowTicks,
		ActMax:               a.cfg.ActMax,
		SnapshotEveryTicks:   a.cfg.SnapshotEveryTicks,
		Counters: snapshot.CountersV1{
			NextActor: a.nextActorNum.Load(),
		},
	}

	for _, id := range a.sortedActorIDs() {
		ac := a.actors[id]
		av := snapshot.ActorV1{
			ID:         ac.ID,
			Name:       ac.Name,
			Faction:    ac.Faction,
			NPC:        ac.NPC,
			Pos:        [2]float64{ac.Pos.X, ac.Pos.Y},
			Yaw:        ac.Yaw,
			HP:         ac.HP,
			Weapon:     ac.Weapon,
			Aggression: ac.Stats.Aggression,
			ParrySkill: ac.Stats.ParrySkill,
			Cooldown:   ac.Cooldown,
		}
		if ac.Attack != nil {
			av.Attack = &snapshot.AttackV1{
				Weapon:      ac.Attack.Weapon,
				Phase:       string(ac.Attack.Phase),
				Remaining:   ac.Attack.Remaining,
				HasHit:      ac.Attack.HasHit,
				StartedTick: ac.Attack.StartedTick,
			}
		}
		if ac.Parry != nil {
			av.Parry = &snapshot.ParryV1{
				Against:     ac.Parry.Against,
				Phase:       string(ac.Parry.Phase),
				Remaining:   ac.Parry.Remaining,
				StartedTick: ac.Parry.StartedTick,
			}
		}
		if ac.Stagger != nil {
			av.Stagger = &snapshot.StaggerV1{
				Remaining: ac.Stagger.Remaining,
				Source:    ac.Stagger.Source,
			}
		}
		if ac.pending != nil {
			av.PendingParry = &snapshot.PendingParryV1{
				DelayTicks: ac.pending.DelayTicks,
				Target:     ac.pending.Target,
			}
		}
		if len(ac.Visible) > 0 {
			for vid := range ac.Visible {
				av.Visible = append(av.Visible, vid)
			}
			sort.Strings(av.Visible)
		}
		if len(ac.rl) > 0 {
			av.RateWindows = map[string]snapshot.RateWindowV1{}
			for k, w := range ac.rl {
				av.RateWindows[k] = snapshot.RateWindowV1{StartTick: w.StartTick, Count: w.Count}
			}
		}
		snap.Actors = append(snap.Actors, av)
	}

	return snap
}

// FromSnapshot rebuilds an arena from a snapshot. The AI rng cannot be
// restored mid-stream, so resumed arenas reseed from (seed XOR tick);
// bit-exact replay of a past run goes through the journal instead.
func FromSnapshot(snap snapshot.SnapshotV1, cats *catalogs.Catalogs) (*Arena, error) {
	if snap.Header.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot: unsupported version %d", snap.Header.Version)
	}

	cfg := Config{
		ID:                   snap.Header.ArenaID,
		TickRateHz:           snap.TickRateHz,
		BoundaryR:            snap.BoundaryR,
		Seed:                 snap.Seed,
		CombatEveryTicks:     snap.CombatEveryTicks,
		PerceptionEveryTicks: snap.PerceptionEveryTicks,
		ReactionMinTicks:     snap.ReactionMinTicks,
		ReactionMaxTicks:     snap.ReactionMaxTicks,
		PerceptionRange:      snap.PerceptionRange,
		FOVDegrees:           snap.FOVDegrees,
		FacingConeDegrees:    snap.FacingConeDegrees,
		ActWindowTicks:       snap.ActWindowTicks,
		ActMax:               snap.ActMax,
		SnapshotEveryTicks:   snap.SnapshotEveryTicks,
	}

	a, err := New(cfg, cats)
	if err != nil {
		return nil, err
	}

	a.tick.Store(snap.Header.Tick)
	a.nextActorNum.Store(snap.Counters.NextActor)
	a.rng = rand.New(rand.NewSource(snap.Seed ^ int64(snap.Header.Tick)))

	for _, av := range snap.Actors {
		ac := &Actor{
			ID:      av.ID,
			Name:    av.Name,
			Faction: av.Faction,
			NPC:     av.NPC,
			Pos:     Vec2{X: av.Pos[0], Y: av.Pos[1]},
			Yaw:     av.Yaw,
			HP:      av.HP,
			Weapon:  av.Weapon,
			Stats: CombatStats{
				Aggression: av.Aggression,
				ParrySkill: av.ParrySkill,
			},
			Cooldown: av.Cooldown,
		}
		ac.initDefaults()
		if av.Attack != nil {
			ac.Attack = &AttackState{
				Weapon:      av.Attack.Weapon,
				Phase:       AttackPhase(av.Attack.Phase),
				Remaining:   av.Attack.Remaining,
				HasHit:      av.Attack.HasHit,
				StartedTick: av.Attack.StartedTick,
			}
		}
		if av.Parry != nil {
			ac.Parry = &ParryState{
				Against:     av.Parry.Against,
				Phase:       ParryPhase(av.Parry.Phase),
				Remaining:   av.Parry.Remaining,
				StartedTick: av.Parry.StartedTick,
			}
		}
		if av.Stagger != nil {
			ac.Stagger = &StaggerState{Remaining: av.Stagger.Remaining, Source: av.Stagger.Source}
		}
		if av.PendingParry != nil {
			ac.pending = &pendingParry{DelayTicks: av.PendingParry.DelayTicks, Target: av.PendingParry.Target}
		}
		for _, vid := range av.Visible {
			ac.Visible[vid] = true
		}
		if len(av.RateWindows) > 0 {
			ac.rl = map[string]*rateWindow{}
			for k, w := range av.RateWindows {
				ac.rl[k] = &rateWindow{StartTick: w.StartTick, Count: w.Count}
			}
		}
		a.actors[ac.ID] = ac
	}

	return a, nil
}

// DebugSetTick forces the tick counter. Test and replay use only.
func (a *Arena) DebugSetTick(t uint64) { a.tick.Store(t) }

// DebugActor returns the live actor record. Test use only; callers must
// not touch it while the arena loop is running.
func (a *Arena) DebugActor(id string) *Actor { return a.actors[id] }

// DebugKill marks an actor dead without an event, as a test precondition.
// The actor is removed at the end of the next step like any other death.
func (a *Arena) DebugKill(id string) bool {
	ac := a.actors[id]
	if ac == nil {
		return false
	}
	ac.clearCombat()
	ac.Dead = true
	ac.HP = 0
	return true
}
