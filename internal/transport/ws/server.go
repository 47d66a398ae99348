// Package ws is the observer WebSocket server: a thin, read-mostly
// surface over the gate. Connections subscribe once, then receive a
// world update push per step; queries are answered inline from the
// reader loop.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fableweave.dev/internal/observerproto"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/simulator"
)

const (
	writeWait = 5 * time.Second
	readWait  = 120 * time.Second

	maxRecentEvents = 500
)

type Server struct {
	gate *Gate
	log  *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uint64]chan []byte
	nextID   uint64
}

func NewServer(gate *Gate, logger *log.Logger) *Server {
	return &Server{
		gate: gate,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[uint64]chan []byte{},
	}
}

// Broadcast pushes a step summary to every connected observer. Register
// it on the simulator driving the gate. Slow observers drop frames
// rather than stall the step.
func (s *Server) Broadcast(sum simulator.StepSummary) {
	// Broadcast runs inside Step with the gate lock held, so the clock
	// must come from the world directly, not back through the gate.
	b, err := json.Marshal(observerproto.WorldUpdateMsg{
		Type:            observerproto.TypeWorldUpdate,
		Step:            sum.Step,
		Clock:           s.gate.sim.World().Clock(),
		EntitiesUpdated: sum.EntitiesUpdated,
		EventsEmitted:   sum.EventsEmitted,
	})
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.sessions {
		select {
		case out <- b:
		default:
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !s.handshake(conn) {
			return
		}

		out := make(chan []byte, 32)
		sid := s.addSession(out)
		defer s.dropSession(sid)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: point queries only.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := observerproto.DecodeBase(msg)
			if err != nil {
				continue
			}
			resp := s.answer(base.Type, msg)
			if resp == nil {
				continue
			}
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handshake requires a SUBSCRIBE frame first and replies with WELCOME.
func (s *Server) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	var sub observerproto.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != observerproto.TypeSubscribe {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
		return false
	}
	if sub.ProtocolVersion != observerproto.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return false
	}

	seed, tick, entities := s.gate.Overview()
	welcome := observerproto.WelcomeMsg{
		Type:            observerproto.TypeWelcome,
		ProtocolVersion: observerproto.Version,
		Seed:            seed,
		Tick:            tick,
		Clock:           s.gate.Clock(),
		Entities:        entities,
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b) == nil
}

func (s *Server) answer(typ string, msg []byte) []byte {
	switch typ {
	case observerproto.TypeGetClock:
		return marshalFrame(observerproto.ClockMsg{
			Type:  observerproto.TypeClock,
			Clock: s.gate.Clock(),
		})

	case observerproto.TypeGetEntity:
		var q observerproto.QueryMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return nil
		}
		e, err := s.gate.Entity(q.ID)
		if err != nil {
			return errorFrame(err)
		}
		return marshalFrame(observerproto.EntityMsg{
			Type:   observerproto.TypeEntity,
			ID:     q.ID,
			Entity: entityView(e),
		})

	case observerproto.TypeRecentEvents:
		var q observerproto.QueryMsg
		if err := json.Unmarshal(msg, &q); err != nil {
			return nil
		}
		n := q.N
		if n <= 0 {
			n = 50
		}
		if n > maxRecentEvents {
			n = maxRecentEvents
		}
		return marshalFrame(observerproto.EventsMsg{
			Type:   observerproto.TypeEvents,
			Events: s.gate.Recent(n),
		})

	default:
		return nil
	}
}

func entityView(e entity.Entity) any {
	switch v := e.(type) {
	case *entity.Location:
		return observerproto.LocationView{
			ID:         v.EntityID(),
			Name:       v.Name,
			Archetype:  v.Archetype,
			Weather:    v.Weather,
			MarketOpen: v.MarketOpen,
			Tags:       v.Tags,
			Provisions: v.Provisions,
			Roster:     v.Roster(),
		}
	default:
		return e
	}
}

func errorFrame(err error) []byte {
	return marshalFrame(observerproto.ErrorMsg{
		Type:    observerproto.TypeError,
		Code:    string(fault.CodeOf(err)),
		Message: err.Error(),
	})
}

func marshalFrame(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func (s *Server) addSession(out chan []byte) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.sessions[s.nextID] = out
	return s.nextID
}

func (s *Server) dropSession(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
