package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/persistence/slotdb"
	"fableweave.dev/internal/persistence/state"
	"fableweave.dev/internal/persistence/steplog"
	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/simulator"
	"fableweave.dev/internal/sim/tuning"
	"fableweave.dev/internal/sim/world"
	"fableweave.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		locations  = flag.Int("locations", 7, "location count for a fresh world")
		npcs       = flag.Int("npcs", 24, "npc count for a fresh world")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "schema directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the autosave slot index db")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "resume from newest autosave slot if present (when -snapshot is empty)")

		stepMinutes  = flag.Int("step_minutes", 1, "simulated minutes per step")
		stepInterval = flag.Duration("step_interval", time.Second, "wall-clock interval between steps")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	tables, err := gen.LoadTables(*configDir, *schemaDir)
	if err != nil {
		logger.Fatalf("load templates: %v", err)
	}
	source := gen.NewGenerator(tables)
	crafts := tables.CraftTable()

	_ = os.MkdirAll(*dataDir, 0o755)

	// Optional read-model index; never affects sim determinism.
	var index *slotdb.DB
	if !*disableDB {
		index, err = slotdb.Open(filepath.Join(*dataDir, "autosaves.db"))
		if err != nil {
			logger.Fatalf("open slot index: %v", err)
		}
		defer index.Close()
	}

	// World: fresh, or resumed from a snapshot.
	var w *world.World
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		if path, ok := state.LatestSlot(*dataDir, tune.Autosave.Slots, index); ok {
			snapshotToLoad = path
		}
	}
	if snapshotToLoad != "" {
		b, err := os.ReadFile(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		w, err = state.Deserialize(b, source, crafts)
		if err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.Ticks())
	} else {
		w, err = world.CreateNew(world.Config{
			Seed:      *seed,
			Locations: *locations,
			NPCs:      *npcs,
			Tune:      tune,
			Crafts:    crafts,
		}, source)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
		logger.Printf("fresh world seed=%d locations=%d npcs=%d", *seed, *locations, *npcs)
	}

	ctx, cancel := signalContext()
	defer cancel()

	sim := simulator.New(w, logger)
	gate := ws.NewGate(sim)
	obsSrv := ws.NewServer(gate, logger)
	sim.AddObserver(obsSrv.Broadcast)

	stepLog := steplog.NewWriter(filepath.Join(*dataDir, "logs"), "steps")
	defer stepLog.Close()
	sim.AddObserver(func(sum simulator.StepSummary) {
		if err := stepLog.Write(sum); err != nil {
			logger.Printf("step log: %v", err)
		}
	})

	saves := state.NewManager(state.Config{
		Dir:             *dataDir,
		Slots:           tune.Autosave.Slots,
		EverySimMinutes: tune.Autosave.EverySimMinutes,
		EveryTicks:      tune.Autosave.EveryTicks,
		Index:           index,
		Logger:          logger,
	})
	defer saves.Close()
	sim.AddObserver(func(simulator.StepSummary) { saves.Observe(w) })

	// Tick driver. All core access, including the observer API's
	// queries, is serialized through the gate.
	go func() {
		ticker := time.NewTicker(*stepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := gate.Step(*stepMinutes); err != nil {
					if fault.IsCorruptData(err) {
						logger.Printf("simulation halted: %v", err)
						cancel()
						return
					}
					logger.Printf("step: %v", err)
				}
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/observer/ws", obsSrv.Handler())

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

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
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
