package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	persistlog "duelgrid.gg/internal/persistence/log"
	"duelgrid.gg/internal/persistence/snapshot"
	"duelgrid.gg/internal/sim/arena"
	"duelgrid.gg/internal/sim/catalogs"
	"duelgrid.gg/internal/sim/tuning"
)

// Re-drives an arena from its journal and verifies the per-tick state
// digests. Either a fresh arena (seed + tuning-equivalent flags) or a
// snapshot is the starting point; the journal supplies every input.
func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst to inspect or resume from")
		arenaDir   = flag.String("arena_dir", "", "arena data dir containing journal/ (optional)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml for fresh replay (default: <configs>/tuning.yaml)")
		arenaID    = flag.String("arena", "arena_1", "arena id for fresh replay")
		seed       = flag.Int64("seed", 1337, "arena seed for fresh replay")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" && strings.TrimSpace(*arenaDir) == "" {
		fmt.Fprintln(os.Stderr, "need -snapshot and/or -arena_dir")
		os.Exit(2)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	var a *arena.Arena
	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d arena=%s tick=%d seed=%d actors=%d\n",
			snap.Header.Version, snap.Header.ArenaID, snap.Header.Tick, snap.Seed, len(snap.Actors))
		if strings.TrimSpace(*arenaDir) == "" {
			return
		}
		a, err = arena.FromSnapshot(snap, cats)
		if err != nil {
			fmt.Fprintln(os.Stderr, "import snapshot:", err)
			os.Exit(1)
		}
	} else {
		// Fresh replay from tick 0: rebuild the arena exactly as the
		// server did, then feed it the whole journal.
		tp := strings.TrimSpace(*tuningPath)
		if tp == "" {
			tp = *configDir + "/tuning.yaml"
		}
		tune, err := tuning.Load(tp)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		a, err = arena.New(arena.Config{
			ID:                   *arenaID,
			TickRateHz:           tune.TickRateHz,
			BoundaryR:            tune.BoundaryR,
			Seed:                 *seed,
			CombatEveryTicks:     uint64(tune.Cadence.CombatEveryTicks),
			PerceptionEveryTicks: uint64(tune.Cadence.PerceptionEveryTicks),
			ReactionMinTicks:     tune.AI.ReactionMinTicks,
			ReactionMaxTicks:     tune.AI.ReactionMaxTicks,
			PerceptionRange:      tune.AI.PerceptionRange,
			FOVDegrees:           tune.AI.FOVDegrees,
			FacingConeDegrees:    tune.AI.FacingConeDegrees,
			ActWindowTicks:       uint64(tune.RateLimits.ActWindowTicks),
			ActMax:               tune.RateLimits.ActMax,
		}, cats)
		if err != nil {
			fmt.Fprintln(os.Stderr, "arena:", err)
			os.Exit(1)
		}
	}

	entries, err := persistlog.ReadJournal(*arenaDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read journal:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no journal entries found in", *arenaDir)
		os.Exit(1)
	}

	startTick := a.CurrentTick()
	verifyFrom := *fromTick
	if verifyFrom == 0 {
		verifyFrom = startTick
	}

	var checked uint64
	for _, entry := range entries {
		if entry.Tick < startTick {
			continue
		}
		if *toTick != 0 && entry.Tick > *toTick {
			break
		}
		if entry.Tick != a.CurrentTick() {
			fmt.Fprintf(os.Stderr, "tick mismatch: want=%d got=%d\n", a.CurrentTick(), entry.Tick)
			os.Exit(1)
		}

		joins := make([]arena.JoinRequest, 0, len(entry.Joins))
		for _, j := range entry.Joins {
			pos := arena.Vec2{X: j.Pos[0], Y: j.Pos[1]}
			joins = append(joins, arena.JoinRequest{
				Name:    j.Name,
				Faction: j.Faction,
				Weapon:  j.Weapon,
				Pos:     &pos,
				Yaw:     j.Yaw,
				NPC:     j.NPC,
				Stats:   j.Stats,
			})
		}
		intents := make([]arena.IntentEnvelope, 0, len(entry.Intents))
		for _, in := range entry.Intents {
			intents = append(intents, arena.IntentEnvelope{ActorID: in.ActorID, Act: in.Act})
		}

		tick, gotDigest := a.StepOnce(joins, entry.Leaves, intents)
		if tick != entry.Tick {
			fmt.Fprintf(os.Stderr, "internal tick mismatch: stepped=%d entry=%d\n", tick, entry.Tick)
			os.Exit(1)
		}

		if tick >= verifyFrom {
			checked++
			if gotDigest != entry.Digest {
				fmt.Fprintf(os.Stderr, "digest mismatch at tick %d: got=%s want=%s\n", tick, gotDigest, entry.Digest)
				os.Exit(1)
			}
		}
	}
	fmt.Printf("replay ok: checked=%d ticks (from tick=%d)\n", checked, startTick)
}
