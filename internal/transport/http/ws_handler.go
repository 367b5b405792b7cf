package http

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"sense-hacker-service/internal/app"
	"sense-hacker-service/internal/domain"
)

// displayCutoff is how many ranked entries the client renders; the current
// player is appended below the cutoff when ranked outside it.
const displayCutoff = 5

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
	rnd      *rand.Rand
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Choice string `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type leaderboardPayload struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// battle use cases. One connection drives one session; messages are handled
// sequentially, so session operations never interleave.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	displayName := r.URL.Query().Get("name")
	avatarRef := r.URL.Query().Get("avatar")
	if playerID == "" || displayName == "" {
		http.Error(w, "missing playerId or name", http.StatusBadRequest)
		return
	}
	if avatarRef == "" {
		avatarRef = app.AvatarRef(h.rnd, playerID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer h.service.Leave(playerID)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "leaderboard", Payload: h.leaderboardView(r, playerID)}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			snap, err := h.service.Start(r.Context(), playerID, displayName, avatarRef)
			h.sendState(send, snap, err)
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.service.Answer(r.Context(), playerID, payload.Choice)
			if err != nil {
				h.sendErr(send, err)
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
			if result.GameOver {
				send <- outboundMessage[any]{Type: "leaderboard", Payload: h.leaderboardView(r, playerID)}
			}
		case "next":
			snap, err := h.service.Next(r.Context(), playerID)
			h.sendState(send, snap, err)
		case "nextRound":
			snap, err := h.service.NextRound(r.Context(), playerID)
			h.sendState(send, snap, err)
		case "restart":
			snap, err := h.service.Restart(r.Context(), playerID)
			h.sendState(send, snap, err)
		case "leaderboard":
			send <- outboundMessage[any]{Type: "leaderboard", Payload: h.leaderboardView(r, playerID)}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) sendState(send chan<- outboundMessage[any], snap app.Snapshot, err error) {
	if err != nil {
		h.sendErr(send, err)
		return
	}
	send <- outboundMessage[any]{Type: "state", Payload: snap}
}

func (h *WSHandler) sendErr(send chan<- outboundMessage[any], err error) {
	if errors.Is(err, domain.ErrInvalidTransition) {
		log.Printf("rejected out-of-phase operation: %v", err)
	}
	send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// leaderboardView applies the presentation rule on top of the ranked view:
// top entries up to the cutoff, plus the current player when ranked below it.
func (h *WSHandler) leaderboardView(r *http.Request, playerID string) leaderboardPayload {
	ranked := h.service.Leaderboard(r.Context())
	entries := ranked
	if len(entries) > displayCutoff {
		entries = entries[:displayCutoff]
	}
	inTop := false
	for _, entry := range entries {
		if entry.PlayerID == playerID {
			inTop = true
			break
		}
	}
	if !inTop {
		for _, entry := range ranked[min(len(ranked), displayCutoff):] {
			if entry.PlayerID == playerID {
				entries = append(entries[:displayCutoff:displayCutoff], entry)
				break
			}
		}
	}
	return leaderboardPayload{Entries: entries}
}
