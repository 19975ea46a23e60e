package event

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Recorder is a Publisher that keeps published events in memory, in order.
// It backs tests and local runs that have no Redis configured.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the event to the in-memory log.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the variant tags of all published events, in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]Type, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

// LogPublisher is a Publisher that writes events to the log. Used when no
// external delivery mechanism is configured.
type LogPublisher struct {
	Log *logrus.Logger
}

// Publish logs the event at info level.
func (p LogPublisher) Publish(_ context.Context, e Event) error {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithFields(logrus.Fields{
		"event_type":   e.EventType(),
		"aggregate_id": e.Aggregate(),
	}).Info("event published")
	return nil
}
