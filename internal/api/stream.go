package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/keystroke-kingdom/internal/econ"
	"github.com/talgya/keystroke-kingdom/internal/events"
	"github.com/talgya/keystroke-kingdom/internal/score"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin is enforced by the CORS layer for the REST surface; the
	// socket carries no credentials, so any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	// streamWriteWait bounds a single frame write to a slow client.
	streamWriteWait = 5 * time.Second
	// streamQueueSize frames may back up per subscriber before it is
	// declared stalled and dropped.
	streamQueueSize = 32
)

// streamEvent is one message pushed to spectators.
type streamEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// subscriber is one websocket client plus its outbound frame queue.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// streamHub fans game notifications out to websocket subscribers. It
// implements the engine's notifier hooks, so the simulation pushes
// insights, unlocks, and event prompts without knowing about sockets.
// Delivery goes through per-subscriber queues: a client that stops
// reading is dropped, never allowed to block the game loop.
type streamHub struct {
	mu   sync.Mutex
	subs map[*subscriber]bool
}

func newStreamHub() *streamHub {
	return &streamHub{subs: make(map[*subscriber]bool)}
}

// handleUpgrade promotes the HTTP request to a websocket subscription.
func (h *streamHub) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, streamQueueSize)}
	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	go h.writeLoop(sub)

	// Drain reads so pings and close frames are processed; the stream
	// is push-only.
	go func() {
		defer h.drop(sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// writeLoop delivers queued frames under a write deadline. It exits when
// the queue closes or the client stops accepting writes.
func (h *streamHub) writeLoop(sub *subscriber) {
	defer h.drop(sub)
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// drop unregisters a subscriber. Idempotent: the read drain, the write
// loop, and broadcast may all report the same dead client.
func (h *streamHub) drop(sub *subscriber) {
	sub.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, sub)
		close(sub.send)
		h.mu.Unlock()
		if sub.conn != nil {
			sub.conn.Close()
		}
	})
}

// broadcast queues one event to every subscriber. It never blocks: a
// subscriber with a full queue has stopped reading and is dropped.
func (h *streamHub) broadcast(ev streamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Debug("stream marshal failed", "type", ev.Type, "error", err)
		return
	}

	var stalled []*subscriber
	h.mu.Lock()
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stalled {
		slog.Debug("dropping stalled stream subscriber")
		h.drop(sub)
	}
}

// BroadcastState pushes the full state after an action or turn.
func (h *streamHub) BroadcastState(s *econ.State) {
	h.broadcast(streamEvent{Type: "state", Payload: s})
}

func (h *streamHub) ShowInsight(id string) {
	h.broadcast(streamEvent{Type: "insight", Payload: id})
}

func (h *streamHub) ShowAchievementUnlock(a score.Achievement) {
	h.broadcast(streamEvent{Type: "achievement", Payload: a})
}

func (h *streamHub) ShowEventChoicePrompt(def *events.Definition) {
	type choiceView struct {
		Label string `json:"label"`
		Cost  int    `json:"cost"`
	}
	choices := make([]choiceView, len(def.Choices))
	for i, c := range def.Choices {
		choices[i] = choiceView{Label: c.Label, Cost: c.Cost}
	}
	h.broadcast(streamEvent{Type: "event", Payload: map[string]any{
		"id":          def.ID,
		"title":       def.Title,
		"description": def.Description,
		"choices":     choices,
	}})
}

func (h *streamHub) ShowEventResult(message string) {
	h.broadcast(streamEvent{Type: "event_result", Payload: message})
}
