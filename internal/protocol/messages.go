package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ActorName       string            `json:"actor_name"`
	Faction         string            `json:"faction,omitempty"`
	Weapon          string            `json:"weapon,omitempty"`
	Capabilities    HelloCapabilities `json:"capabilities,omitempty"`
}

type HelloCapabilities struct {
	MaxQueue int `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	ActorID         string         `json:"actor_id"`
	ResumeToken     string         `json:"resume_token"`
	ArenaParams     ArenaParams    `json:"arena_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type ArenaParams struct {
	TickRateHz           int     `json:"tick_rate_hz"`
	CombatEveryTicks     int     `json:"combat_every_ticks"`
	PerceptionEveryTicks int     `json:"perception_every_ticks"`
	BoundaryR            float64 `json:"boundary_r"`
	Seed                 int64   `json:"seed"`
}

type CatalogDigests struct {
	Weapons      DigestRef `json:"weapons"`
	TuningDigest string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CATALOG (server -> client): one catalog sent as a single part.
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`   // e.g. "weapons"
	Digest          string      `json:"digest"` // sha256 hex
	Part            int         `json:"part"`
	TotalParts      int         `json:"total_parts"`
	Data            interface{} `json:"data"`
}
