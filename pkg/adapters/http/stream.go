package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- *domain.ListDiff]struct{} // InstanceID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- *domain.ListDiff]struct{}),
	}
}

func (sm *StreamManager) Subscribe(instanceID string) (<-chan *domain.ListDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.ListDiff, 10)
	if _, ok := sm.subscribers[instanceID]; !ok {
		sm.subscribers[instanceID] = make(map[chan<- *domain.ListDiff]struct{})
	}
	sm.subscribers[instanceID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[instanceID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, instanceID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(diff *domain.ListDiff) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[diff.InstanceID] {
		select {
		case ch <- diff:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "instance_id", diff.InstanceID)
		}
	}
}

// Hooks returns servicer hooks that broadcast every committed change.
func (sm *StreamManager) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.OperationEvent) {
			if e.Diff != nil {
				sm.Broadcast(e.Diff)
			}
		},
	}
}

// SubscribeEvents handles the GET /instances/{instance}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var instance string
	if err := bindPath(r, "instance", &instance); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	var kindParam *string
	if err := runtime.BindQueryParameter("form", true, false, "kind", r.URL.Query(), &kindParam); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter kind: %v", err), http.StatusBadRequest)
		return
	}
	var only domain.Kind
	if kindParam != nil {
		k, err := domain.ParseKind(*kindParam)
		if err != nil {
			s.fail(w, "SubscribeEvents", err)
			return
		}
		only = k
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(instance)
	defer cancel()
	s.Logger.Info("SSE: Subscribing to instance updates", "instance_id", instance, "kind", only)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "instance_id", instance)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if only != "" && diff.Kind != only {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.Logger.Error("SSE: Diff encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", diff.Kind, data)
			flusher.Flush()
		}
	}
}
