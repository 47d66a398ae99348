package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"fableweave.dev/internal/sim/entity"
)

// StateDigest fingerprints the full world state. Two worlds driven by
// the same seed and the same tick sequence must report identical
// digests at every step; the determinism tests lean on this.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, &tmp, w.clock.Minute())
	writeU64(h, &tmp, w.ticks)
	writeU64(h, &tmp, w.nextNPC)
	writeU64(h, &tmp, w.nextLoc)
	writeU64(h, &tmp, w.bus.LastSeq())

	for _, id := range w.order {
		switch e := w.entities[id].(type) {
		case *entity.NPC:
			digestNPC(h, &tmp, e)
		case *entity.Location:
			digestLocation(h, &tmp, e)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestNPC(h hash.Hash, tmp *[8]byte, n *entity.NPC) {
	writeStr(h, n.ID)
	writeByte(h, boolByte(n.Active))
	writeStr(h, n.Name, n.Race, string(n.State), n.LocationID, n.WorkSiteID)
	writeF64(h, tmp, n.Needs.Energy, n.Needs.Hunger, n.Needs.Mood)
	writeStr(h, n.Professions...)
	writeStr(h, n.TravelPlan...)
	writeU64(h, tmp, uint64(len(n.Memory)))
}

func digestLocation(h hash.Hash, tmp *[8]byte, l *entity.Location) {
	writeStr(h, l.ID)
	writeByte(h, boolByte(l.Active))
	writeStr(h, l.Name, l.Archetype, l.Weather)
	writeByte(h, boolByte(l.MarketOpen))
	writeU64(h, tmp, uint64(l.Provisions))
	writeStr(h, l.Roster()...)
}

func writeU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func writeF64(h hash.Hash, tmp *[8]byte, vs ...float64) {
	for _, v := range vs {
		writeU64(h, tmp, math.Float64bits(v))
	}
}

func writeStr(h hash.Hash, ss ...string) {
	for _, s := range ss {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
}

func writeByte(h hash.Hash, b byte) { h.Write([]byte{b}) }

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
