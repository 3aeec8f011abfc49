package protocol

type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	ActorID         string `json:"actor_id"`

	Self     SelfObs     `json:"self"`
	Entities []EntityObs `json:"entities"`
	Events   []Event     `json:"events"`
}

type SelfObs struct {
	Pos     [2]float64 `json:"pos"`
	Yaw     float64    `json:"yaw"`
	HP      int        `json:"hp"`
	Faction string     `json:"faction"`
	Weapon  string     `json:"weapon"`

	Combat CombatObs `json:"combat"`
}

// CombatObs mirrors the live combat records. Empty phase strings mean
// no record is present.
type CombatObs struct {
	AttackPhase     string `json:"attack_phase,omitempty"`
	AttackRemaining int    `json:"attack_remaining,omitempty"`
	ParryPhase      string `json:"parry_phase,omitempty"`
	ParryRemaining  int    `json:"parry_remaining,omitempty"`
	StaggerRemaining int   `json:"stagger_remaining,omitempty"`
	CooldownTicks   int    `json:"cooldown_ticks,omitempty"`
}

// EntityObs is limited to what the observing actor can perceive.
type EntityObs struct {
	ID      string     `json:"id"`
	Pos     [2]float64 `json:"pos"`
	Yaw     float64    `json:"yaw"`
	Faction string     `json:"faction"`
	Hostile bool       `json:"hostile"`

	// AttackPhase is a visual hint only; set when the entity has a live
	// attack record (the telegraph is what animation would show).
	AttackPhase string `json:"attack_phase,omitempty"`
}

type Event map[string]interface{}

// ACT (client -> server)
type ActMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	ActorID         string      `json:"actor_id,omitempty"`
	Intents         []IntentReq `json:"intents"`
}

// Intent types.
const (
	IntentAttack = "ATTACK"
	IntentParry  = "PARRY"
)

type IntentReq struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "ATTACK" or "PARRY"
	Target string `json:"target"`
}
