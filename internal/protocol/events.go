package protocol

// Combat event "type" values carried inside Event maps.
const (
	EventAttackPhase   = "ATTACK_PHASE"
	EventDamage        = "DAMAGE"
	EventParryResolved = "PARRY_RESOLVED"
	EventStagger       = "STAGGER"
	EventWindupSeen    = "WINDUP_SEEN"
	EventDeath         = "DEATH"
	EventActionResult  = "ACTION_RESULT"
)
