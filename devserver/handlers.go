package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"assistui/backend"
)

// Reply is the canned answer for a user message.
func Reply(userMessage string) string {
	return fmt.Sprintf("You said: '%s'. I'm a stub assistant and can't help yet!", userMessage)
}

// SplitWords cuts a reply into the fragments the stream endpoint sends: the
// first word as is, every later word with its leading space.
func SplitWords(message string) []string {
	words := strings.Split(message, " ")
	chunks := make([]string, len(words))
	for i, word := range words {
		if i == 0 {
			chunks[i] = word
			continue
		}
		chunks[i] = " " + word
	}
	return chunks
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("root").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Electronics Product RAG API",
		"endpoints": map[string]string{
			"chat":        "POST " + backend.ChatPath,
			"chat_stream": "POST " + backend.StreamPath,
			"health":      "GET " + backend.HealthPath,
		},
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("health").Inc()
	writeJSON(w, http.StatusOK, backend.HealthStatus{
		Status:  "healthy",
		Service: ServiceName,
		Version: ServiceVersion,
	})
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("chat").Inc()

	userMessage, ok := h.decodeLastMessage(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": Reply(userMessage)})
}

func (h *handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	h.requests.WithLabelValues("chat_stream").Inc()

	userMessage, ok := h.decodeLastMessage(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for _, chunk := range SplitWords(Reply(userMessage)) {
		if err := writeEvent(w, backend.Event{Type: backend.EventTypeText, Content: chunk}); err != nil {
			h.log.Debug().Err(err).Str("request_id", middleware.GetReqID(ctx)).Msg("stream write failed")
			return
		}
		h.fragments.Inc()
		if canFlush {
			flusher.Flush()
		}

		if h.wordDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.wordDelay):
			}
		}
	}

	if err := writeEvent(w, backend.Event{Type: backend.EventTypeDone}); err != nil {
		return
	}
	if canFlush {
		flusher.Flush()
	}
}

// decodeLastMessage reads the chat request and returns the content of its
// final message ("" for an empty history).
func (h *handler) decodeLastMessage(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req backend.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return "", false
	}

	h.log.Debug().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("messages", len(req.Messages)).
		Msg("chat request")

	if len(req.Messages) == 0 {
		return "", true
	}
	return req.Messages[len(req.Messages)-1].Content, true
}

// writeEvent writes one "data: " line followed by a blank line.
func writeEvent(w http.ResponseWriter, ev backend.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s\n\n", backend.EventPrefix, b)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
