package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"duelgrid.gg/internal/persistence/indexdb"
	persistlog "duelgrid.gg/internal/persistence/log"
	"duelgrid.gg/internal/persistence/snapshot"
	"duelgrid.gg/internal/sim/arena"
	"duelgrid.gg/internal/sim/catalogs"
	"duelgrid.gg/internal/sim/tuning"
	"duelgrid.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		arenaID    = flag.String("arena", "arena_1", "arena id")
		seed       = flag.Int64("seed", 1337, "arena seed (used only when starting fresh)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	arenaDir := filepath.Join(*dataDir, "arenas", *arenaID)
	_ = os.MkdirAll(arenaDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(arenaDir)
	}

	// Tuning is required for a fresh arena; a snapshot resume carries its
	// own parameters and tolerates a missing file.
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad != "" && os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}

	// Optional read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(arenaDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	var a *arena.Arena
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.ArenaID != "" && snap.Header.ArenaID != *arenaID {
			logger.Fatalf("snapshot arena id mismatch: flag=%s snap=%s", *arenaID, snap.Header.ArenaID)
		}
		a, err = arena.FromSnapshot(snap, cats)
		if err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), a.CurrentTick())
	} else {
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
			SnapshotEveryTicks:   uint64(tune.SnapshotEveryTicks),
		}, cats)
		if err != nil {
			logger.Fatalf("arena: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(arenaDir)
	defer tickLog.Close()
	a.SetTickLogger(multiTickLogger{a: tickLog, b: idx})

	// NPC spawns go through a journaled tick so replays see them too.
	if snapshotToLoad == "" {
		spawnNPCs(a, tune, logger)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	a.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(arenaDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
				logger.Printf("snapshot written tick=%d actors=%d", snap.Header.Tick, len(snap.Actors))
			}
		}
	}()

	go func() {
		if err := a.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("arena stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(a, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s arena=%s seed=%d", *addr, *arenaID, *seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// spawnNPCs joins the tuning-declared NPC roster before the loop starts,
// so npc actor ids are stable for a given config.
func spawnNPCs(a *arena.Arena, tune tuning.Tuning, logger *log.Logger) {
	if len(tune.NPCs) == 0 {
		return
	}
	joins := make([]arena.JoinRequest, 0, len(tune.NPCs))
	for _, n := range tune.NPCs {
		pos := arena.Vec2{X: n.X, Y: n.Y}
		joins = append(joins, arena.JoinRequest{
			Name:    n.Name,
			Faction: n.Faction,
			Weapon:  n.Weapon,
			Pos:     &pos,
			Yaw:     n.Yaw,
			NPC:     true,
			Stats:   arena.CombatStats{Aggression: n.Aggression, ParrySkill: n.ParrySkill},
		})
	}
	tick, _ := a.StepOnce(joins, nil, nil)
	logger.Printf("spawned %d npcs at tick %d", len(joins), tick)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(arenaDir string) string {
	dir := filepath.Join(arenaDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

type multiTickLogger struct {
	a arena.TickLogger
	b arena.TickLogger
}

func (m multiTickLogger) WriteTick(entry arena.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}
