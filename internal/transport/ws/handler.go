// Package ws exposes the session RPC channel over a websocket. Outbound
// state pushes and inbound client calls share one connection, each message
// an envelope of method name and JSON payload.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"santa-agent-service/internal/app"
)

// ResultMethod names the envelope that answers an inbound call.
const ResultMethod = "rpc.result"

type Handler struct {
	service  *app.AgentService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(service *app.AgentService, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Envelope is one message in either direction.
type Envelope struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// CallResult answers an inbound call with the handler's string result.
type CallResult struct {
	Method string `json:"method"`
	Result string `json:"result"`
}

// peer is the connected remote participant for one session.
type peer struct {
	identity string
	send     chan Envelope
	done     chan struct{}
	once     sync.Once
}

func (p *peer) Identity() string { return p.identity }

func (p *peer) Push(ctx context.Context, method string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case p.send <- Envelope{Method: method, Payload: raw}:
		return nil
	case <-p.done:
		return errors.New("peer disconnected")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *peer) close() {
	p.once.Do(func() { close(p.done) })
}

// ServeWS upgrades the request and binds the connection to its session as
// the single peer. The connection identifies its session with the sessionId
// query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	identity := r.URL.Query().Get("identity")
	if identity == "" {
		identity = "client"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	p := &peer{
		identity: identity,
		send:     make(chan Envelope, 16),
		done:     make(chan struct{}),
	}

	sess := h.service.Sessions().GetOrCreate(sessionID)
	sess.AttachPeer(p)
	h.log.Info("peer connected", zap.String("session", sessionID), zap.String("identity", identity))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-p.send:
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Warn("ws write failed", zap.String("session", sessionID), zap.Error(err))
					p.close()
					return
				}
			case <-p.done:
				return
			}
		}
	}()

	for {
		var inbound Envelope
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		result := h.service.DispatchInbound(r.Context(), sessionID, inbound.Method, payloadString(inbound.Payload))

		raw, err := json.Marshal(CallResult{Method: inbound.Method, Result: result})
		if err != nil {
			continue
		}
		select {
		case p.send <- Envelope{Method: ResultMethod, Payload: raw}:
		case <-p.done:
		}
	}

	sess.DetachPeer(p)
	p.close()
	<-writerDone
	h.log.Info("peer disconnected", zap.String("session", sessionID), zap.String("identity", identity))
}

// payloadString unwraps the inbound payload. Clients may send the payload as
// a JSON object or as a string-encoded JSON document; both forms reach the
// handlers as the raw document text.
func payloadString(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
