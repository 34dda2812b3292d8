package ws

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"structplace.ai/internal/protocol"
)

// Routes registers the websocket endpoint and the plain HTTP query API.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ws", s.Handler())
	mux.HandleFunc("/v1/locate", s.LocateHandler())
	mux.HandleFunc("/v1/decide", s.DecideHandler())
	mux.HandleFunc("/v1/placement", s.PlacementHandler())
	mux.HandleFunc("/v1/history", s.HistoryHandler())
	mux.HandleFunc("/admin/v1/reload", s.ReloadHandler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
}

// GET /v1/locate?target=&x=&y=&z=&seed=&radius=
func (s *Server) LocateHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		m := protocol.LocateMsg{
			Type:            protocol.TypeLocate,
			ProtocolVersion: protocol.Version,
			RequestID:       protocol.NewRequestID(),
			Target:          q.Get("target"),
		}
		var bad []string
		m.Start[0] = intParam(q.Get("x"), "x", &bad)
		m.Start[1] = intParam(q.Get("y"), "y", &bad)
		m.Start[2] = intParam(q.Get("z"), "z", &bad)
		m.MaxRadius = intParam(q.Get("radius"), "radius", &bad)
		m.Seed = seedParam(q.Get("seed"), &bad)
		if len(bad) > 0 {
			writeReply(rw, protocol.NewError(m.RequestID, protocol.ErrBadRequest, "bad parameters: "+strings.Join(bad, ", ")))
			return
		}
		writeReply(rw, s.Locate(m))
	}
}

// GET /v1/decide?cx=&cz=&seed=&biome=
func (s *Server) DecideHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		m := protocol.DecideMsg{
			Type:            protocol.TypeDecide,
			ProtocolVersion: protocol.Version,
			RequestID:       protocol.NewRequestID(),
			Biome:           q.Get("biome"),
		}
		var bad []string
		m.Chunk[0] = intParam(q.Get("cx"), "cx", &bad)
		m.Chunk[1] = intParam(q.Get("cz"), "cz", &bad)
		m.Seed = seedParam(q.Get("seed"), &bad)
		if len(bad) > 0 {
			writeReply(rw, protocol.NewError(m.RequestID, protocol.ErrBadRequest, "bad parameters: "+strings.Join(bad, ", ")))
			return
		}
		writeReply(rw, s.Decide(m))
	}
}

// GET /v1/placement
func (s *Server) PlacementHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeReply(rw, s.Resolve(protocol.NewRequestID()))
	}
}

// GET /v1/history?target=&limit=
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if s.opts.Index == nil {
			http.Error(rw, "index disabled", http.StatusNotFound)
			return
		}
		var bad []string
		limit := intParam(r.URL.Query().Get("limit"), "limit", &bad)
		if len(bad) > 0 {
			writeReply(rw, protocol.NewError("", protocol.ErrBadRequest, "bad parameters: limit"))
			return
		}
		rows, err := s.opts.Index.RecentLocates(r.Context(), r.URL.Query().Get("target"), limit)
		if err != nil {
			writeReply(rw, protocol.NewError("", protocol.ErrInternal, err.Error()))
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(rows)
	}
}

// POST /admin/v1/reload (loopback only)
func (s *Server) ReloadHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if s.opts.Reload == nil {
			http.Error(rw, "reload disabled", http.StatusNotFound)
			return
		}
		if err := s.opts.Reload(); err != nil {
			if s.log != nil {
				s.log.Printf("reload failed: %v", err)
			}
			writeReply(rw, protocol.NewError("", protocol.ErrInternal, err.Error()))
			return
		}
		if s.log != nil {
			s.log.Printf("config reloaded")
		}
		writeReply(rw, s.Resolve(protocol.NewRequestID()))
	}
}

func writeReply(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if e, ok := v.(protocol.ErrorMsg); ok {
		rw.WriteHeader(statusFor(e.Code))
	}
	_ = json.NewEncoder(rw).Encode(v)
}

func statusFor(code string) int {
	switch code {
	case protocol.ErrBadRequest, protocol.ErrProtoBadRequest:
		return http.StatusBadRequest
	case protocol.ErrNotInPool:
		return http.StatusNotFound
	case protocol.ErrUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw, name string, bad *[]string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*bad = append(*bad, name)
	}
	return v
}

func seedParam(raw string, bad *[]string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*bad = append(*bad, "seed")
		return nil
	}
	return &v
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
