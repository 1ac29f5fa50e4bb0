package fernet

import (
	"fmt"
	"sync"

	"github.com/fernet-go/fernet/errors"
	"github.com/sirupsen/logrus"
)

// The fixed lifecycle events. The bus accepts no other names.
const (
	EventLoad     = "onLoad"
	EventRequest  = "onRequest"
	EventResponse = "onResponse"
	EventError    = "onError"
)

var knownEvents = map[string]bool{
	EventLoad:     true,
	EventRequest:  true,
	EventResponse: true,
	EventError:    true,
}

// EventFunc is a lifecycle subscriber. The argument is the value named by the
// event contract: the application for onLoad, the request for onRequest, the
// response for onResponse, the failure for onError.
type EventFunc func(app *Application, arg interface{}) error

// EventBus holds ordered subscriber lists for the fixed lifecycle events.
// Subscription order is dispatch order; subscribers are never de-duplicated
// and never pruned.
type EventBus struct {
	subscribers map[string][]EventFunc
	logger      *logrus.Logger
	mu          sync.RWMutex
}

func NewEventBus(logger *logrus.Logger) *EventBus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventBus{
		subscribers: make(map[string][]EventFunc),
		logger:      logger,
	}
}

// Subscribe appends fn to the named event's list. Names outside the fixed
// set fail with ErrorUnknownEvent.
func (bus *EventBus) Subscribe(name string, fn EventFunc) error {
	if !knownEvents[name] {
		return errors.Wrap(errors.ErrorUnknownEvent, fmt.Errorf("unknown event %q", name))
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.logger.Debugf("subscribing to event %s", name)
	bus.subscribers[name] = append(bus.subscribers[name], fn)

	return nil
}

// Dispatch invokes every subscriber of the named event in subscription order,
// synchronously, each with the same argument. The first subscriber error
// aborts the remainder and propagates; lifecycle subscribers are trusted
// first-class code, not sandboxed.
func (bus *EventBus) Dispatch(app *Application, name string, arg interface{}) error {
	if !knownEvents[name] {
		return errors.Wrap(errors.ErrorUnknownEvent, fmt.Errorf("unknown event %q", name))
	}

	bus.mu.RLock()
	subscribers := bus.subscribers[name]
	bus.mu.RUnlock()

	for pos, fn := range subscribers {
		bus.logger.Debugf("dispatching event %s (%d/%d)", name, pos+1, len(subscribers))

		if err := fn(app, arg); err != nil {
			return err
		}
	}

	return nil
}

// Count returns the current subscriber count for name, zero for names outside
// the fixed set.
func (bus *EventBus) Count(name string) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[name])
}
