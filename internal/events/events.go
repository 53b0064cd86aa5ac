package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is one request or accept observation. Events are advisory: they
// feed logging and the optional external sinks, never the response path.
type Event struct {
	ID           string    `json:"id" bson:"id"`
	TS           time.Time `json:"ts" bson:"ts"`
	Event        string    `json:"event" bson:"event"`
	ClientKey    string    `json:"client_key" bson:"client_key"`
	ForwardedKey string    `json:"xff_key,omitempty" bson:"xff_key,omitempty"`
	Method       string    `json:"method" bson:"method"`
	Path         string    `json:"path" bson:"path"`
	Host         string    `json:"host,omitempty" bson:"host,omitempty"`
	UserAgent    string    `json:"ua,omitempty" bson:"ua,omitempty"`
	Status       int       `json:"status" bson:"status"`
	DurationMS   int64     `json:"ms" bson:"ms"`
	Fingerprint  string    `json:"fingerprint,omitempty" bson:"fingerprint,omitempty"`
}

const (
	EventRequest = "request"
	EventAccept  = "accept"
)

// Sink receives copies of events. Implementations may block or fail; the
// dispatcher shields callers from both.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// Dispatcher fans events out to sinks from a single worker goroutine.
// Publish never blocks: when the buffer is full the event is dropped.
// Sink errors are logged at debug level and otherwise swallowed, so sink
// failure or latency can never delay or fail a captive-state response.
type Dispatcher struct {
	logger *logrus.Logger
	sinks  []Sink
	ch     chan Event
	done   chan struct{}
}

func NewDispatcher(logger *logrus.Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		sinks:  sinks,
		ch:     make(chan Event, 256),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		for _, s := range d.sinks {
			if err := s.Write(ctx, ev); err != nil {
				d.logger.WithError(err).Debug("event sink write failed")
			}
		}
		cancel()
	}
}

// Publish enqueues a copy of ev, stamping ID and TS when absent.
func (d *Dispatcher) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case d.ch <- ev:
	default:
		d.logger.Debug("event buffer full, dropping event")
	}
}

// Close stops the worker after draining buffered events.
func (d *Dispatcher) Close() {
	close(d.ch)
	<-d.done
}
