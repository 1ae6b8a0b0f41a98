package alerts

import (
	"fmt"
	"strings"
	"sync"

	"bunasiem/pkg/models"
)

// Sink is a single alert destination.
type Sink interface {
	WriteAlerts(alerts []*models.Alert) error
	Close() error
}

// Dispatcher fans fired alerts out to every configured sink. A failing
// sink does not stop delivery to the others; all failures are collected
// into one error.
type Dispatcher struct {
	mu    sync.Mutex
	sinks []Sink
	names []string
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds a named sink.
func (d *Dispatcher) Register(name string, sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sink)
	d.names = append(d.names, name)
}

// Names returns the registered sink names in order.
func (d *Dispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// WriteAlerts delivers the batch to every sink.
func (d *Dispatcher) WriteAlerts(alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var failures []string
	for i, sink := range d.sinks {
		if err := sink.WriteAlerts(alerts); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", d.names[i], err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("alert delivery failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// Close closes every sink, returning the first error.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
