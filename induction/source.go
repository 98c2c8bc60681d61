package induction

import (
	"context"
	"sync"
	"time"
)

// ScanSource is the push-based hardware boundary delivering scan events.
// Minimum value length and inter-character timing heuristics live behind
// this interface, not in the engine.
type ScanSource interface {
	// Subscribe registers a handler and returns a function that
	// unsubscribes it.
	Subscribe(handler func(ScanEvent)) (cancel func())
}

// Attach subscribes a session to a source for the lifetime of a flow.
// The returned detach function must be called when the flow completes or
// the surrounding screen is dismissed.
func Attach(ctx context.Context, session *Session, source ScanSource) (detach func()) {
	return source.Subscribe(func(event ScanEvent) {
		session.HandleScan(ctx, event)
	})
}

// ChannelSource is an in-process ScanSource for hosts that deliver
// scans programmatically, such as tests injecting synthetic reads.
type ChannelSource struct {
	mu       sync.Mutex
	handlers map[int]func(ScanEvent)
	nextID   int
}

func NewChannelSource() *ChannelSource {
	return &ChannelSource{
		handlers: make(map[int]func(ScanEvent)),
	}
}

func (s *ChannelSource) Subscribe(handler func(ScanEvent)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Publish delivers a scan value to every subscriber with the current
// timestamp.
func (s *ChannelSource) Publish(value string) {
	event := ScanEvent{Value: value, Timestamp: time.Now()}

	s.mu.Lock()
	handlers := make([]func(ScanEvent), 0, len(s.handlers))
	for _, handler := range s.handlers {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
