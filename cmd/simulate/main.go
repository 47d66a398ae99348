// Headless driver: build a world, run a fixed number of steps as fast
// as possible, report the outcome and optionally write a snapshot.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/persistence/snapshot"
	"fableweave.dev/internal/persistence/state"
	"fableweave.dev/internal/sim/simulator"
	"fableweave.dev/internal/sim/tuning"
	"fableweave.dev/internal/sim/world"
)

func main() {
	var (
		seed       = flag.Int64("seed", 1337, "world seed")
		locations  = flag.Int("locations", 7, "location count")
		npcs       = flag.Int("npcs", 24, "npc count")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "schema directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")

		snapIn      = flag.String("in", "", "snapshot to resume from instead of a fresh world")
		steps       = flag.Int("steps", 1440, "number of steps to run")
		stepMinutes = flag.Int("step_minutes", 1, "simulated minutes per step")

		snapOut  = flag.String("out", "", "write a snapshot here when done (optional)")
		encoding = flag.String("encoding", "gob", "snapshot encoding: json|gob")
		compress = flag.Bool("compress", true, "zstd-compress the snapshot body")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
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

	var w *world.World
	if strings.TrimSpace(*snapIn) != "" {
		b, err := os.ReadFile(*snapIn)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		w, err = state.Deserialize(b, source, crafts)
		if err != nil {
			logger.Fatalf("restore snapshot: %v", err)
		}
		logger.Printf("resumed tick=%d", w.Ticks())
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
	}

	ctx, cancel := signalContext()
	defer cancel()

	sim := simulator.New(w, logger)
	sum, err := sim.Run(ctx, *stepMinutes, *steps)
	if err != nil {
		logger.Printf("run stopped: %v", err)
	}
	logger.Printf("steps=%d entities_updated=%d events=%d clock=%s digest=%s",
		sum.StepsDone, sum.EntitiesUpdated, sum.EventsEmitted, w.Clock(), w.StateDigest())

	if strings.TrimSpace(*snapOut) == "" {
		return
	}
	opts := snapshot.Options{Encoding: snapshot.Encoding(*encoding)}
	if *compress {
		opts.Compression = snapshot.CompressionZstd
	}
	b, err := snapshot.Encode(w.ExportSnapshot(), opts)
	if err != nil {
		logger.Fatalf("encode snapshot: %v", err)
	}
	if err := os.WriteFile(*snapOut, b, 0o644); err != nil {
		logger.Fatalf("write snapshot: %v", err)
	}
	logger.Printf("snapshot written to %s (%d bytes)", *snapOut, len(b))
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
