package arena

import (
	"duelgrid.gg/internal/protocol"
)

// AttackPhase tags the live attack record. Idle is represented by the
// absence of a record, not a phase value.
type AttackPhase string

const (
	AttackWindup      AttackPhase = "WINDUP"
	AttackParryWindow AttackPhase = "PARRY_WINDOW"
	AttackHitbox      AttackPhase = "HITBOX"
	AttackRecovery    AttackPhase = "RECOVERY"
)

// AttackState is the single live attack record of an actor. The phase
// machine advances it once per tick; Remaining never goes negative.
type AttackState struct {
	Weapon    string
	Phase     AttackPhase
	Remaining int

	// HasHit latches true the first time damage is applied during the
	// HITBOX sub-phase; once true no further damage is emitted for this
	// attack instance.
	HasHit bool

	StartedTick uint64
}

type ParryPhase string

const (
	ParryWindup   ParryPhase = "WINDUP"
	ParryRecovery ParryPhase = "RECOVERY"
)

// ParryState is the single live parry record of an actor. Against names
// the attacker the defender reacted to; it is carried for events and
// animation only — the coincidence check re-resolves the attacker's phase
// by a fresh id lookup, never through this field.
type ParryState struct {
	Against   string
	Phase     ParryPhase
	Remaining int

	StartedTick uint64
}

// StaggerState is a forced vulnerable state. While present the actor may
// not start an attack, and any live attack was removed the tick it was
// applied.
type StaggerState struct {
	Remaining int
	Source    string
}

// CombatStats drive the decision maker for NPC actors.
type CombatStats struct {
	Aggression float64 `json:"aggression"`  // 0..1, chance to counter-attack
	ParrySkill float64 `json:"parry_skill"` // 0..1, chance to attempt a parry
}

// pendingParry is a parry intent scheduled by the decision maker, delayed
// by a reaction time. DelayTicks counts down on the fast cadence; at zero
// the parry intent is submitted through the normal validation path.
type pendingParry struct {
	DelayTicks int
	Target     string
}

type Actor struct {
	ID      string
	Name    string
	Faction string
	NPC     bool

	// ResumeToken is a transport-level token used for reconnects.
	// It is intentionally NOT included in snapshots/digests.
	ResumeToken string

	Pos Vec2
	Yaw float64 // degrees, 0 = +X, counter-clockwise
	HP  int

	Weapon string
	Stats  CombatStats

	// Single-slot combat records; nil means no live record. The single
	// slot structurally prevents two live records of one kind per actor.
	Attack  *AttackState
	Parry   *ParryState
	Stagger *StaggerState

	// Cooldown is the remaining weapon cooldown in ticks; attacks are
	// admitted only at zero.
	Cooldown int

	// Visible is the perception snapshot: hostile actor ids this actor
	// can currently see. Rebuilt on the perception cadence.
	Visible map[string]bool

	pending *pendingParry

	Dead bool

	Events []protocol.Event

	// Rate limiting windows (per intent kind).
	rl map[string]*rateWindow
}

type rateWindow struct {
	StartTick uint64
	Count     int
}

func (a *Actor) initDefaults() {
	if a.HP == 0 {
		a.HP = 20
	}
	if a.Faction == "" {
		a.Faction = "BLUE"
	}
	if a.Visible == nil {
		a.Visible = map[string]bool{}
	}
}

func (a *Actor) AddEvent(ev protocol.Event) {
	a.Events = append(a.Events, ev)
	// Cap the buffer so a detached client cannot grow it without bound.
	if len(a.Events) > 256 {
		a.Events = a.Events[len(a.Events)-256:]
	}
}

// RateLimitAllow counts intents of one kind inside a sliding window of
// windowTicks. The tick delta is computed with wrapping subtraction so the
// window stays correct across counter wraparound.
func (a *Actor) RateLimitAllow(kind string, now uint64, windowTicks uint64, max int) bool {
	if max <= 0 || windowTicks == 0 {
		return true
	}
	if a.rl == nil {
		a.rl = map[string]*rateWindow{}
	}
	w := a.rl[kind]
	if w == nil || now-w.StartTick >= windowTicks {
		a.rl[kind] = &rateWindow{StartTick: now, Count: 1}
		return true
	}
	if w.Count >= max {
		return false
	}
	w.Count++
	return true
}

// Hostile reports whether the two actors belong to opposing factions.
func (a *Actor) Hostile(b *Actor) bool {
	return a.Faction != b.Faction
}

// clearCombat drops every live combat record. Used on death and forced
// removal; callers are responsible for the events that precede it.
func (a *Actor) clearCombat() {
	a.Attack = nil
	a.Parry = nil
	a.Stagger = nil
	a.pending = nil
}
