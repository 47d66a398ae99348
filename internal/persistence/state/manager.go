// Package state is the StateManager: snapshot serialization plus the
// autosave loop. Serialization itself is a synchronous in-memory copy;
// the disk write always happens on a background goroutine so the tick
// path never blocks on I/O.
package state

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"fableweave.dev/internal/persistence/slotdb"
	"fableweave.dev/internal/persistence/snapshot"
	"fableweave.dev/internal/sim/world"
)

type Config struct {
	Dir   string
	Opts  snapshot.Options
	Slots int

	// Autosave triggers; zero disables the corresponding trigger.
	EverySimMinutes int
	EveryTicks      int

	// Index is optional; autosaves are recorded in it when present.
	Index  *slotdb.DB
	Logger *log.Logger
}

type Manager struct {
	cfg Config

	lastMinute uint64
	lastTicks  uint64
	slotCursor int

	jobs chan snapshot.SnapshotV1
	wg   sync.WaitGroup
	once sync.Once
}

func NewManager(cfg Config) *Manager {
	if cfg.Slots <= 0 {
		cfg.Slots = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[state] ", log.LstdFlags)
	}
	m := &Manager{
		cfg: cfg,
		// Room for one pending save; a second trigger while a write is
		// in flight drops rather than stalling the sim.
		jobs: make(chan snapshot.SnapshotV1, 1),
	}
	m.wg.Add(1)
	go m.writeLoop()
	return m
}

// Serialize captures and encodes a world synchronously.
func (m *Manager) Serialize(w *world.World) ([]byte, error) {
	return snapshot.Encode(w.ExportSnapshot(), m.cfg.Opts)
}

// Deserialize is the inverse: decode, validate, rebuild.
func Deserialize(b []byte, source world.ContentSource, crafts map[string][]string) (*world.World, error) {
	snap, err := snapshot.Decode(b)
	if err != nil {
		return nil, err
	}
	return world.FromSnapshot(snap, source, crafts)
}

// Observe runs after every tick. When an autosave trigger fires it
// takes the in-memory copy on the caller's goroutine (cheap, no I/O)
// and hands it to the writer.
func (m *Manager) Observe(w *world.World) {
	minute := w.Clock().Minute
	ticks := w.Ticks()
	if !m.due(minute, ticks) {
		return
	}
	m.lastMinute = minute
	m.lastTicks = ticks

	select {
	case m.jobs <- w.ExportSnapshot():
	default:
		// Writer still busy with the previous save.
		m.cfg.Logger.Printf("autosave skipped at tick %d: writer busy", ticks)
	}
}

func (m *Manager) due(minute, ticks uint64) bool {
	if m.cfg.EverySimMinutes > 0 && minute-m.lastMinute >= uint64(m.cfg.EverySimMinutes) {
		return true
	}
	if m.cfg.EveryTicks > 0 && ticks-m.lastTicks >= uint64(m.cfg.EveryTicks) {
		return true
	}
	return false
}

// Close flushes pending saves and stops the writer.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.jobs) })
	m.wg.Wait()
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()
	for snap := range m.jobs {
		if err := m.writeSlot(snap); err != nil {
			m.cfg.Logger.Printf("autosave failed: %v", err)
		}
	}
}

func (m *Manager) writeSlot(snap snapshot.SnapshotV1) error {
	b, err := snapshot.Encode(snap, m.cfg.Opts)
	if err != nil {
		return err
	}
	slot := m.slotCursor
	m.slotCursor = (m.slotCursor + 1) % m.cfg.Slots

	path := SlotPath(m.cfg.Dir, slot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	if m.cfg.Index != nil {
		if err := m.cfg.Index.RecordSlot(slotdb.SlotRecord{
			Slot:   slot,
			Tick:   snap.Ticks,
			Minute: snap.ClockMinute,
			Seed:   snap.Seed,
			Path:   path,
		}); err != nil {
			m.cfg.Logger.Printf("record autosave slot %d: %v", slot, err)
		}
	}
	m.cfg.Logger.Printf("autosave slot %d written (tick %d, minute %d)", slot, snap.Ticks, snap.ClockMinute)
	return nil
}

func SlotPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("autosave_%d.fws", slot))
}

// LatestSlot scans the slot files on disk and returns the path of the
// newest save by tick count, preferring the index when available.
func LatestSlot(dir string, slots int, index *slotdb.DB) (string, bool) {
	if index != nil {
		if rec, ok, err := index.Latest(); err == nil && ok {
			if _, statErr := os.Stat(rec.Path); statErr == nil {
				return rec.Path, true
			}
		}
	}
	best := ""
	var bestTicks uint64
	for slot := 0; slot < slots; slot++ {
		path := SlotPath(dir, slot)
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		snap, err := snapshot.Decode(b)
		if err != nil {
			continue
		}
		if best == "" || snap.Ticks >= bestTicks {
			best, bestTicks = path, snap.Ticks
		}
	}
	return best, best != ""
}
