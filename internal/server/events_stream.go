package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/cartera/internal/events"
)

const (
	streamBuffer      = 100
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 5 * time.Second
)

// streamMessage is what clients receive for every event.
type streamMessage struct {
	Type      string                 `json:"type"`
	Module    string                 `json:"module,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

// EventsStreamHandler forwards bus events to clients over Server-Sent Events
// or a websocket. Clients may narrow the stream with ?types=A,B.
type EventsStreamHandler struct {
	eventBus       *events.Bus
	log            zerolog.Logger
	heartbeat      time.Duration
	originPatterns []string
}

// NewEventsStreamHandler creates a new events stream handler. originPatterns
// lists the extra origins allowed to open a websocket; nil allows same-origin
// only.
func NewEventsStreamHandler(eventBus *events.Bus, originPatterns []string, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:       eventBus,
		log:            log.With().Str("component", "events_stream").Logger(),
		heartbeat:      heartbeatInterval,
		originPatterns: originPatterns,
	}
}

// subscribe returns a channel of events for the requested types and a
// function that removes the subscriptions. Slow clients lose events rather
// than block publishers.
func (h *EventsStreamHandler) subscribe(r *http.Request) (<-chan *events.Event, func()) {
	types := events.AllTypes
	if filter := r.URL.Query().Get("types"); filter != "" {
		types = nil
		for _, t := range strings.Split(filter, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, events.EventType(t))
			}
		}
	}

	ch := make(chan *events.Event, streamBuffer)
	handler := func(event *events.Event) {
		select {
		case ch <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}

	unsubscribes := make([]func(), 0, len(types))
	for _, t := range types {
		unsubscribes = append(unsubscribes, h.eventBus.Subscribe(t, handler))
	}
	return ch, func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}

func toMessage(event *events.Event) streamMessage {
	return streamMessage{
		Type:      string(event.Type),
		Module:    event.Module,
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Data:      event.Data,
	}
}

func connectedMessage() streamMessage {
	return streamMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "Connected to event stream",
	}
}

func heartbeatMessage() streamMessage {
	return streamMessage{Type: "heartbeat", Timestamp: time.Now().Format(time.RFC3339)}
}

// ServeSSE handles GET /api/events/stream.
func (h *EventsStreamHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, unsubscribe := h.subscribe(r)
	defer unsubscribe()

	send := func(msg streamMessage) {
		data, err := json.Marshal(msg)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to marshal event")
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	h.log.Info().Msg("Client connected to event stream")
	send(connectedMessage())

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return
		case event := <-eventChan:
			send(toMessage(event))
		case <-heartbeat.C:
			send(heartbeatMessage())
		}
	}
}

// ServeWS handles GET /api/events/ws. The socket is write-only; anything the
// client sends closes it.
func (h *EventsStreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	eventChan, unsubscribe := h.subscribe(r)
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())

	send := func(msg streamMessage) error {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return conn.Write(writeCtx, websocket.MessageText, data)
	}

	h.log.Info().Msg("Websocket client connected")
	if err := send(connectedMessage()); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		var msg streamMessage
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Websocket client disconnected")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			msg = toMessage(event)
		case <-heartbeat.C:
			msg = heartbeatMessage()
		}
		if err := send(msg); err != nil {
			h.log.Debug().Err(err).Msg("Websocket write failed")
			return
		}
	}
}
