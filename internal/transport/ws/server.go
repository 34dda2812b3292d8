package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"structplace.ai/internal/persistence/indexdb"
	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/protocol"
	"structplace.ai/internal/sim/engine"
)

// Recorder receives every answered query. Implementations must not block.
type Recorder interface {
	Locate(e plog.LocateEntry)
	Decision(e plog.DecisionEntry)
}

type Options struct {
	Recorder Recorder
	// Reload re-reads the config from disk; nil disables the admin endpoint.
	Reload func() error
	Index  *indexdb.SQLiteIndex
}

type Server struct {
	rt   *engine.Runtime
	log  *log.Logger
	opts Options

	upgrader websocket.Upgrader
}

func NewServer(rt *engine.Runtime, logger *log.Logger, opts Options) *Server {
	return &Server{
		rt:   rt,
		log:  logger,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan any, 16)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v := <-out:
					if err := writeJSON(conn, v); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Queries are answered in order.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			select {
			case out <- s.Query(msg):
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		if s.log != nil {
			s.log.Printf("session %s closed", sessionID)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (string, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", false
	}
	if hello.ClientName == "" {
		hello.ClientName = "client"
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       protocol.NewRequestID(),
	}
	s.rt.View(func(e *engine.Engine) {
		cfg := e.Config()
		welcome.Seed = cfg.Seed
		welcome.StructureSet = cfg.StructureSet
		welcome.Pool = e.Pool().IDs()
		welcome.ConfigDigest, _ = indexdb.ConfigDigest(cfg)
	})
	if err := writeJSON(conn, welcome); err != nil {
		return "", false
	}
	if s.log != nil {
		s.log.Printf("session %s opened by %s", welcome.SessionID, hello.ClientName)
	}
	return welcome.SessionID, true
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
