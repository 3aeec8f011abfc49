package arenatest

import (
	"encoding/json"
	"testing"

	"duelgrid.gg/internal/protocol"
	"duelgrid.gg/internal/sim/arena"
	"duelgrid.gg/internal/sim/catalogs"
)

// Harness is a black-box test helper for driving an arena via exported
// APIs: Join() issues a JoinRequest via StepOnce(), Act()/StepNoop()
// advance single ticks, per-actor Out channels carry OBS JSON. It avoids
// touching arena internals so scenario tests can live outside the arena
// package (the Debug* hooks are the one sanctioned backdoor).
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	A    *arena.Arena

	sessions map[string]*session
}

type session struct {
	ActorID string
	Out     chan []byte
	lastObs protocol.ObsMsg
}

// JoinOpts positions an actor deterministically for a scenario.
type JoinOpts struct {
	Name    string
	Faction string
	Weapon  string
	Pos     arena.Vec2
	Yaw     float64
	NPC     bool
	Stats   arena.CombatStats
}

func NewHarness(t *testing.T, cfg arena.Config, cats *catalogs.Catalogs) *Harness {
	t.Helper()

	a, err := arena.New(cfg, cats)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	return &Harness{
		T:        t,
		Cats:     cats,
		A:        a,
		sessions: map[string]*session{},
	}
}

// NewHarnessWithArena wraps an already-constructed arena, e.g. one
// rebuilt from a snapshot.
func NewHarnessWithArena(t *testing.T, a *arena.Arena, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	if a == nil {
		t.Fatalf("NewHarnessWithArena: nil arena")
	}
	return &Harness{
		T:        t,
		Cats:     cats,
		A:        a,
		sessions: map[string]*session{},
	}
}

// Join adds an actor at the given pose. It consumes one tick.
func (h *Harness) Join(opts JoinOpts) string {
	h.T.Helper()

	out := make(chan []byte, 64)
	resp := make(chan arena.JoinResponse, 1)
	pos := opts.Pos
	_, _ = h.A.StepOnce([]arena.JoinRequest{{
		Name:    opts.Name,
		Faction: opts.Faction,
		Weapon:  opts.Weapon,
		Pos:     &pos,
		Yaw:     opts.Yaw,
		NPC:     opts.NPC,
		Stats:   opts.Stats,
		Out:     out,
		Resp:    resp,
	}}, nil, nil)
	jr := <-resp
	if jr.Welcome.ActorID == "" {
		h.T.Fatalf("join returned empty actor id")
	}
	s := &session{ActorID: jr.Welcome.ActorID, Out: out}
	h.sessions[s.ActorID] = s
	h.drainAllObs()
	return s.ActorID
}

// Act submits intents for one actor and advances one tick.
func (h *Harness) Act(actorID string, intents ...protocol.IntentReq) protocol.ObsMsg {
	h.T.Helper()
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            h.A.CurrentTick(),
		ActorID:         actorID,
		Intents:         intents,
	}
	_, _ = h.A.StepOnce(nil, nil, []arena.IntentEnvelope{{ActorID: actorID, Act: act}})
	h.drainAllObs()
	return h.LastObs(actorID)
}

// ActAt is Act with an explicit client-claimed tick, for staleness tests.
func (h *Harness) ActAt(actorID string, claimedTick uint64, intents ...protocol.IntentReq) protocol.ObsMsg {
	h.T.Helper()
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            claimedTick,
		ActorID:         actorID,
		Intents:         intents,
	}
	_, _ = h.A.StepOnce(nil, nil, []arena.IntentEnvelope{{ActorID: actorID, Act: act}})
	h.drainAllObs()
	return h.LastObs(actorID)
}

// StepNoop advances one tick with no inputs.
func (h *Harness) StepNoop() {
	h.T.Helper()
	_, _ = h.A.StepOnce(nil, nil, nil)
	h.drainAllObs()
}

// StepN advances n input-free ticks.
func (h *Harness) StepN(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.StepNoop()
	}
}

// StepUntilTick advances input-free ticks until CurrentTick == target.
func (h *Harness) StepUntilTick(target uint64) {
	h.T.Helper()
	for h.A.CurrentTick() < target {
		h.StepNoop()
	}
}

func (h *Harness) LastObs(actorID string) protocol.ObsMsg {
	h.T.Helper()
	s := h.sessions[actorID]
	if s == nil {
		h.T.Fatalf("unknown actor id: %q", actorID)
	}
	return s.lastObs
}

// EventsOfType filters the latest OBS events for one actor.
func (h *Harness) EventsOfType(actorID, eventType string) []protocol.Event {
	h.T.Helper()
	var out []protocol.Event
	for _, ev := range h.LastObs(actorID).Events {
		if t, _ := ev["type"].(string); t == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Harness) drainAllObs() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOneObs(s)
	}
}

func (h *Harness) drainOneObs(s *session) {
	h.T.Helper()
	var last []byte
	for {
		select {
		case b := <-s.Out:
			last = b
			continue
		default:
		}
		break
	}
	if len(last) == 0 {
		return
	}
	var obs protocol.ObsMsg
	if err := json.Unmarshal(last, &obs); err != nil {
		h.T.Fatalf("unmarshal OBS: %v", err)
	}
	s.lastObs = obs
}
