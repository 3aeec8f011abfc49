package arena

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"duelgrid.gg/internal/persistence/snapshot"
	"duelgrid.gg/internal/protocol"
	"duelgrid.gg/internal/sim/catalogs"
)

type Config struct {
	ID         string
	TickRateHz int
	BoundaryR  float64
	Seed       int64

	CombatEveryTicks     uint64
	PerceptionEveryTicks uint64

	ReactionMinTicks  int
	ReactionMaxTicks  int
	PerceptionRange   float64
	FOVDegrees        float64
	FacingConeDegrees float64

	ActWindowTicks uint64
	ActMax         int

	SnapshotEveryTicks uint64
}

type JoinRequest struct {
	Name    string
	Faction string
	Weapon  string
	Pos     *Vec2
	Yaw     float64
	NPC     bool
	Stats   CombatStats

	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome  protocol.WelcomeMsg
	Catalogs []protocol.CatalogMsg
}

type IntentEnvelope struct {
	ActorID string
	Act     protocol.ActMsg
}

type RecordedJoin struct {
	ActorID string      `json:"actor_id"`
	Name    string      `json:"name"`
	Faction string      `json:"faction"`
	Weapon  string      `json:"weapon"`
	Pos     [2]float64  `json:"pos"`
	Yaw     float64     `json:"yaw"`
	NPC     bool        `json:"npc,omitempty"`
	Stats   CombatStats `json:"stats,omitempty"`
}

type RecordedIntent struct {
	ActorID string          `json:"actor_id"`
	Act     protocol.ActMsg `json:"act"`
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Joins   []RecordedJoin   `json:"joins,omitempty"`
	Leaves  []string         `json:"leaves,omitempty"`
	Intents []RecordedIntent `json:"intents,omitempty"`
	Digest  string           `json:"digest"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type clientState struct {
	Out chan []byte
}

// Arena is a single-threaded authoritative combat simulation.
// All state must be accessed only from the arena loop goroutine.
type Arena struct {
	cfg      Config
	catalogs *catalogs.Catalogs

	tick atomic.Uint64

	actors  map[string]*Actor
	clients map[string]*clientState

	// windupSeen holds this tick's detector output for the decision
	// maker; cleared every combat-cadence tick.
	windupSeen []windupSighting

	rng   *rand.Rand
	sched *schedule

	inbox chan IntentEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextActorNum atomic.Uint64

	// Optional tick journal (may be nil). Implemented in internal/persistence.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing is off-thread.
	snapshotSink chan<- snapshot.SnapshotV1
}

func New(cfg Config, cats *catalogs.Catalogs) (*Arena, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("arena: tick rate must be positive")
	}
	if cfg.CombatEveryTicks == 0 || cfg.PerceptionEveryTicks == 0 {
		return nil, fmt.Errorf("arena: cadence divisors must be positive")
	}
	if cats == nil || len(cats.Weapons.Palette) == 0 {
		return nil, fmt.Errorf("arena: empty weapon catalog")
	}

	a := &Arena{
		cfg:      cfg,
		catalogs: cats,
		actors:   map[string]*Actor{},
		clients:  map[string]*clientState{},
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		inbox:    make(chan IntentEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		stop:     make(chan struct{}),
	}

	// Fixed dispatch order: fast -> combat -> perception; within a cadence,
	// resolvers run before the detector-driven systems that read their
	// post-transition phases.
	s := &schedule{}
	s.addCadence(cadenceFast, 1)
	s.addCadence(cadenceCombat, cfg.CombatEveryTicks)
	s.addCadence(cadencePerception, cfg.PerceptionEveryTicks)
	s.addSystem(cadenceFast, "reaction_delays", a.systemReactionDelays)
	s.addSystem(cadenceFast, "stagger", a.systemStagger)
	s.addSystem(cadenceFast, "attacks", a.systemAttacks)
	s.addSystem(cadenceFast, "parries", a.systemParries)
	s.addSystem(cadenceFast, "cooldowns", a.systemCooldowns)
	s.addSystem(cadenceCombat, "windup_detector", a.systemWindupDetector)
	s.addSystem(cadenceCombat, "decisions", a.systemDecisions)
	s.addSystem(cadencePerception, "perception", a.systemPerception)
	a.sched = s

	return a, nil
}

func (a *Arena) SetTickLogger(l TickLogger)                    { a.tickLogger = l }
func (a *Arena) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { a.snapshotSink = ch }

func (a *Arena) Inbox() chan<- IntentEnvelope { return a.inbox }
func (a *Arena) Join() chan<- JoinRequest     { return a.join }
func (a *Arena) Leave() chan<- string         { return a.leave }

func (a *Arena) CurrentTick() uint64 { return a.tick.Load() }

func (a *Arena) Config() Config { return a.cfg }

// Run drives the arena on a fixed wall-clock ticker. The simulation itself
// never reads real time: all inputs collected between ticks are applied at
// the next tick boundary, so tick N has identical semantics no matter how
// long the wait before it was.
func (a *Arena) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(a.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingIntents []IntentEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.stop:
			return nil
		case req := <-a.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-a.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-a.inbox:
			pendingIntents = append(pendingIntents, env)
		case <-ticker.C:
			a.step(pendingJoins, pendingLeaves, pendingIntents)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingIntents = pendingIntents[:0]
		}
	}
}

func (a *Arena) Stop() { close(a.stop) }

func (a *Arena) joinActor(req JoinRequest) JoinResponse {
	name := req.Name
	if name == "" {
		name = "duelist"
	}

	idNum := a.nextActorNum.Add(1)
	actorID := fmt.Sprintf("A%d", idNum)

	weapon := req.Weapon
	if _, ok := a.catalogs.Weapons.Defs[weapon]; !ok {
		weapon = a.catalogs.Weapons.Palette[0]
	}

	pos := Vec2{X: float64(idNum) * 2, Y: float64(idNum) * -2}
	if req.Pos != nil {
		pos = *req.Pos
	}

	ac := &Actor{
		ID:      actorID,
		Name:    name,
		Faction: req.Faction,
		NPC:     req.NPC,
		Pos:     pos,
		Yaw:     req.Yaw,
		Weapon:  weapon,
		Stats:   req.Stats,
	}
	ac.initDefaults()

	a.actors[actorID] = ac
	if req.Out != nil {
		a.clients[actorID] = &clientState{Out: req.Out}
	}

	token := fmt.Sprintf("resume_%s_%d", a.cfg.ID, time.Now().UnixNano())
	ac.ResumeToken = token

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ActorID:         actorID,
		ResumeToken:     token,
		ArenaParams: protocol.ArenaParams{
			TickRateHz:           a.cfg.TickRateHz,
			CombatEveryTicks:     int(a.cfg.CombatEveryTicks),
			PerceptionEveryTicks: int(a.cfg.PerceptionEveryTicks),
			BoundaryR:            a.cfg.BoundaryR,
			Seed:                 a.cfg.Seed,
		},
		Catalogs: protocol.CatalogDigests{
			Weapons: protocol.DigestRef{
				Digest: a.catalogs.Weapons.PaletteDigest,
				Count:  len(a.catalogs.Weapons.Palette),
			},
		},
	}

	catalogMsgs := []protocol.CatalogMsg{
		{
			Type:            protocol.TypeCatalog,
			ProtocolVersion: protocol.Version,
			Name:            "weapons",
			Digest:          a.catalogs.Weapons.PaletteDigest,
			Part:            1,
			TotalParts:      1,
			Data:            weaponCatalogData(a.catalogs),
		},
	}

	return JoinResponse{Welcome: welcome, Catalogs: catalogMsgs}
}

func weaponCatalogData(cats *catalogs.Catalogs) []catalogs.WeaponDef {
	out := make([]catalogs.WeaponDef, 0, len(cats.Weapons.Palette))
	for _, id := range cats.Weapons.Palette {
		out = append(out, cats.Weapons.Defs[id])
	}
	return out
}

func (a *Arena) handleLeave(actorID string) {
	delete(a.clients, actorID)
}

func (a *Arena) step(joins []JoinRequest, leaves []string, intents []IntentEnvelope) {
	nowTick := a.tick.Load()

	// Apply leaves and joins deterministically at tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := a.actors[id]; ok {
			a.handleLeave(id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := a.joinActor(req)
		if req.Resp != nil {
			req.Resp <- resp
		}
		ac := a.actors[resp.Welcome.ActorID]
		recordedJoins = append(recordedJoins, RecordedJoin{
			ActorID: ac.ID, Name: ac.Name, Faction: ac.Faction, Weapon: ac.Weapon,
			Pos: [2]float64{ac.Pos.X, ac.Pos.Y}, Yaw: ac.Yaw, NPC: ac.NPC, Stats: ac.Stats,
		})
	}

	// Apply intents in server receive order (the inbox order).
	recorded := make([]RecordedIntent, 0, len(intents))
	for _, env := range intents {
		ac := a.actors[env.ActorID]
		if ac == nil || ac.Dead {
			continue
		}
		env.Act.ActorID = env.ActorID // trust session identity
		recorded = append(recorded, RecordedIntent{ActorID: env.ActorID, Act: env.Act})
		a.applyAct(ac, env.Act, nowTick)
	}

	// Cadences fire in fixed order; all work for this tick completes
	// before the clock advances.
	a.sched.runDue(nowTick)

	// Build + send OBS for each connected actor.
	for _, id := range a.sortedActorIDs() {
		cl := a.clients[id]
		if cl == nil {
			a.actors[id].Events = nil // nobody listening, drop the buffer
			continue
		}
		a.sendObs(a.actors[id], cl, nowTick)
	}

	// Dead actors leave the arena after their final OBS went out.
	for _, id := range a.sortedActorIDs() {
		if a.actors[id].Dead {
			delete(a.actors, id)
			delete(a.clients, id)
		}
	}

	digest := a.stateDigest(nowTick)
	if a.tickLogger != nil {
		_ = a.tickLogger.WriteTick(TickLogEntry{
			Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves,
			Intents: recorded, Digest: digest,
		})
	}

	if a.snapshotSink != nil && a.cfg.SnapshotEveryTicks != 0 &&
		nowTick != 0 && nowTick%a.cfg.SnapshotEveryTicks == 0 {
		snap := a.ExportSnapshot(nowTick)
		select {
		case a.snapshotSink <- snap:
		default:
			// Drop snapshot if the sink is backed up.
		}
	}

	a.tick.Add(1)
}

// StepOnce advances the arena by a single tick using the same ordering
// semantics as the server loop. It is primarily intended for deterministic
// replays and tests.
func (a *Arena) StepOnce(joins []JoinRequest, leaves []string, intents []IntentEnvelope) (tick uint64, digest string) {
	tick = a.tick.Load()
	a.step(joins, leaves, intents)
	return tick, a.stateDigest(tick)
}

func (a *Arena) sortedActorIDs() []string {
	ids := make([]string, 0, len(a.actors))
	for id := range a.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Arena) weapon(id string) (catalogs.WeaponDef, bool) {
	w, ok := a.catalogs.Weapons.Defs[id]
	return w, ok
}
